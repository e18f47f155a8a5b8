package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"zenflow/internal/config"
	"zenflow/internal/reports"
	"zenflow/internal/tracker"
)

// testNow is a Monday.
var testNow = time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)

func newTestApp() *App {
	return &App{now: func() time.Time { return testNow }}
}

// runApp executes the command line args against dataDir with defaults for
// every config setting.
func runApp(t *testing.T, app *App, dataDir string, args ...string) (string, error) {
	t.Helper()
	t.Setenv(config.EnvRemoteURL, "")
	t.Setenv(config.EnvRemoteAPIKey, "")

	cmd := newRootCmd(app)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{
		"--config", filepath.Join(dataDir, "absent.yaml"),
		"--data-dir", dataDir,
	}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func run(t *testing.T, dataDir string, args ...string) (string, error) {
	t.Helper()
	return runApp(t, newTestApp(), dataDir, args...)
}

func mustRun(t *testing.T, dataDir string, args ...string) string {
	t.Helper()
	out, err := run(t, dataDir, args...)
	if err != nil {
		t.Fatalf("zenflow %s: %v\n%s", strings.Join(args, " "), err, out)
	}
	return out
}

func addItem(t *testing.T, dataDir string, args ...string) tracker.Item {
	t.Helper()
	out := mustRun(t, dataDir, append([]string{"add", "--json"}, args...)...)
	var it tracker.Item
	if err := json.Unmarshal([]byte(out), &it); err != nil {
		t.Fatalf("decoding added item: %v\n%s", err, out)
	}
	return it
}

func listItems(t *testing.T, dataDir string, extra ...string) []tracker.Item {
	t.Helper()
	out := mustRun(t, dataDir, append([]string{"list", "--json"}, extra...)...)
	var items []tracker.Item
	if err := json.Unmarshal([]byte(out), &items); err != nil {
		t.Fatalf("decoding list: %v\n%s", err, out)
	}
	return items
}

func TestAgendaAndDone(t *testing.T) {
	dir := t.TempDir()
	it := addItem(t, dir, "Drink water", "--days", "Seg", "--start", "2024-03-04", "--target", "2")
	if it.Kind != tracker.KindHabit || it.TargetRepetitions != 2 {
		t.Fatalf("added %+v", it)
	}

	out := mustRun(t, dir, "agenda", "2024-03-04")
	if !strings.Contains(out, "[ ] "+it.ID+"  Drink water [0/2]") {
		t.Errorf("agenda = %q", out)
	}
	if !strings.Contains(out, "0/1 complete on 2024-03-04") {
		t.Errorf("agenda summary missing: %q", out)
	}

	out = mustRun(t, dir, "done", it.ID, "--date", "2024-03-04")
	if strings.TrimSpace(out) != "Progress 1/2: Drink water (2024-03-04)" {
		t.Errorf("first done = %q", out)
	}
	// The date defaults to today, a Monday.
	out = mustRun(t, dir, "done", it.ID)
	if strings.TrimSpace(out) != "Completed: Drink water (2024-03-04)" {
		t.Errorf("second done = %q", out)
	}

	var agenda []tracker.Item
	if err := json.Unmarshal([]byte(mustRun(t, dir, "agenda", "--json")), &agenda); err != nil {
		t.Fatal(err)
	}
	if len(agenda) != 1 || !agenda[0].CompletedOn("2024-03-04") {
		t.Errorf("agenda --json = %+v", agenda)
	}

	out = mustRun(t, dir, "agenda", "2024-03-05")
	if !strings.Contains(out, "Nothing scheduled for 2024-03-05.") {
		t.Errorf("tuesday agenda = %q", out)
	}
}

func TestDoneOffSchedule(t *testing.T) {
	dir := t.TempDir()
	it := addItem(t, dir, "Gym", "--days", "Seg", "--start", "2024-03-04")

	_, err := run(t, dir, "done", it.ID, "--date", "2024-03-05")
	if !errors.Is(err, tracker.ErrNotDue) {
		t.Errorf("done on a Tuesday = %v, want ErrNotDue", err)
	}
	if _, err := run(t, dir, "done", "missing"); !errors.Is(err, tracker.ErrNotFound) {
		t.Errorf("done on unknown id = %v", err)
	}
	if _, err := run(t, dir, "done", it.ID, "--date", "04/03/2024"); err == nil {
		t.Error("bad date accepted")
	}
}

func TestAddValidation(t *testing.T) {
	dir := t.TempDir()
	cases := [][]string{
		{"add", "Nothing", "--target", "0"},
		{"add", "Pay rent", "--kind", "oneoff", "--days", "Seg"},
		{"add", "Walk", "--days", "Funday"},
		{"add", "Walk", "--color", "red"},
	}
	for _, args := range cases {
		_, err := run(t, dir, args...)
		var verr *tracker.ValidationError
		if !errors.As(err, &verr) {
			t.Errorf("zenflow %v = %v, want a validation error", args, err)
		}
	}
	if items := listItems(t, dir); len(items) != 0 {
		t.Errorf("rejected adds left %d items", len(items))
	}
}

func TestEditKeepsUnsetFields(t *testing.T) {
	dir := t.TempDir()
	it := addItem(t, dir, "Read", "--days", "Seg,Qua", "--target", "3", "--category", "Estudo", "--start", "2024-03-04")

	mustRun(t, dir, "edit", it.ID, "--title", "Read more", "--target", "1")
	got := listItems(t, dir)[0]
	if got.Title != "Read more" || got.TargetRepetitions != 1 {
		t.Errorf("edited = %+v", got)
	}
	if got.Category != "Estudo" || len(got.RecurrenceDays) != 2 || got.StartDate != "2024-03-04" {
		t.Errorf("unset fields changed: %+v", got)
	}
	if !got.CreatedAt.Equal(it.CreatedAt) {
		t.Errorf("created at changed: %v -> %v", it.CreatedAt, got.CreatedAt)
	}

	mustRun(t, dir, "edit", it.ID, "--kind", "oneoff")
	got = listItems(t, dir)[0]
	if got.Kind != tracker.KindOneOff || len(got.RecurrenceDays) != 0 {
		t.Errorf("switch to oneoff = %+v", got)
	}
}

func TestRmNeedsYes(t *testing.T) {
	dir := t.TempDir()
	it := addItem(t, dir, "Pay rent", "--kind", "oneoff")

	out := mustRun(t, dir, "rm", it.ID)
	if !strings.Contains(out, "Run again with --yes") {
		t.Errorf("rm without --yes = %q", out)
	}
	if n := len(listItems(t, dir)); n != 1 {
		t.Fatalf("items after unconfirmed rm = %d", n)
	}

	out = mustRun(t, dir, "rm", it.ID, "--yes")
	if !strings.Contains(out, "Deleted "+it.ID) {
		t.Errorf("rm --yes = %q", out)
	}
	if out := mustRun(t, dir, "list"); !strings.Contains(out, "No items yet") {
		t.Errorf("list after rm = %q", out)
	}
}

func TestReport(t *testing.T) {
	dir := t.TempDir()
	it := addItem(t, dir, "Meditate", "--days", "Seg,Ter", "--start", "2024-03-04")
	mustRun(t, dir, "done", it.ID)

	var daily reports.DailyReport
	if err := json.Unmarshal([]byte(mustRun(t, dir, "report", "--format", "json")), &daily); err != nil {
		t.Fatal(err)
	}
	if daily.Date != "2024-03-04" || daily.CompletedCount != 1 || daily.TotalCount != 1 {
		t.Errorf("daily = %+v", daily)
	}

	var weekly reports.WeeklyReport
	if err := json.Unmarshal([]byte(mustRun(t, dir, "report", "2024-03-06", "--weekly", "-f", "json")), &weekly); err != nil {
		t.Fatal(err)
	}
	if weekly.StartDate != "2024-03-03" || weekly.TotalDue != 2 || weekly.TotalCompleted != 1 {
		t.Errorf("weekly = %+v", weekly)
	}

	if out := mustRun(t, dir, "report"); !strings.Contains(out, "Meditate") {
		t.Errorf("markdown report = %q", out)
	}

	path := filepath.Join(dir, "out", "report.md")
	out := mustRun(t, dir, "report", "--output", path)
	if !strings.Contains(out, "Report written to") {
		t.Errorf("report --output = %q", out)
	}
	if data, err := os.ReadFile(path); err != nil || !strings.Contains(string(data), "Meditate") {
		t.Errorf("report file = %q, %v", data, err)
	}

	if _, err := run(t, dir, "report", "--format", "xml"); err == nil {
		t.Error("unknown format accepted")
	}
	if _, err := run(t, dir, "report", "--format", "json", "--render"); err == nil {
		t.Error("--render with json accepted")
	}
}

func TestRemindDryRun(t *testing.T) {
	dir := t.TempDir()
	it := addItem(t, dir, "Pay rent", "--kind", "oneoff", "--start", "2024-03-04")

	out := mustRun(t, dir, "remind", "--dry-run")
	if !strings.Contains(out, "zenflow: 1 pending for 2024-03-04") || !strings.Contains(out, "• Pay rent") {
		t.Errorf("remind = %q", out)
	}

	mustRun(t, dir, "done", it.ID)
	if out := mustRun(t, dir, "remind", "--dry-run"); !strings.Contains(out, "Nothing pending for 2024-03-04.") {
		t.Errorf("remind after done = %q", out)
	}
}

const legacyTasks = `[
  {"id":"h1","title":"BEBER ÁGUA","type":"COTIDIANO","days":["Seg"],"dueDate":"2024-03-01",
   "targetReps":2,"createdAt":"2024-03-01T10:00:00.000Z"},
  {"id":"t1","title":"PAGAR ALUGUEL","type":"TAREFA","dueDate":"2024-03-02","targetReps":1,
   "currentReps":1,"status":"Concluída","createdAt":"2024-03-02T09:00:00.000Z"}
]`

func TestImportLegacy(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(t.TempDir(), "zenflow_tasks.json")
	if err := os.WriteFile(file, []byte(legacyTasks), 0o600); err != nil {
		t.Fatal(err)
	}

	out := mustRun(t, dir, "import", "zenflow", file, "--dry-run")
	if !strings.Contains(out, "Preview: 2 items to import") || !strings.Contains(out, "BEBER ÁGUA") {
		t.Errorf("dry run = %q", out)
	}
	if n := len(listItems(t, dir)); n != 0 {
		t.Fatalf("dry run imported %d items", n)
	}

	out = mustRun(t, dir, "import", "zenflow", file)
	if !strings.Contains(out, "Imported: 2 items") {
		t.Errorf("import = %q", out)
	}
	out = mustRun(t, dir, "import", "zenflow", file)
	if !strings.Contains(out, "Imported: 0 items") || !strings.Contains(out, "Skipped:  2 items") {
		t.Errorf("re-import = %q", out)
	}

	if _, err := run(t, dir, "import", "taskwarrior", file); err == nil || !strings.Contains(err.Error(), "supported") {
		t.Errorf("unknown format = %v", err)
	}
}

func TestExport(t *testing.T) {
	dir := t.TempDir()
	it := addItem(t, dir, "Drink water", "--days", "Seg", "--start", "2024-03-04", "--target", "2")
	mustRun(t, dir, "done", it.ID)

	csv := mustRun(t, dir, "export", "--format", "csv")
	if !strings.HasPrefix(csv, "item_id,title,kind,date,repetitions,target,status\n") {
		t.Errorf("csv header = %q", csv)
	}
	if !strings.Contains(csv, it.ID+",Drink water,habit,2024-03-04,1,2,pending") {
		t.Errorf("csv = %q", csv)
	}

	var file struct {
		Items []json.RawMessage `json:"items"`
	}
	if err := json.Unmarshal([]byte(mustRun(t, dir, "export")), &file); err != nil {
		t.Fatal(err)
	}
	if len(file.Items) != 1 {
		t.Errorf("json export items = %d", len(file.Items))
	}

	path := filepath.Join(dir, "history.csv")
	mustRun(t, dir, "export", "-f", "csv", "-o", path)
	if data, _ := os.ReadFile(path); string(data) != csv {
		t.Errorf("exported file differs from stdout export")
	}
	if _, err := run(t, dir, "export", "--format", "xml"); err == nil {
		t.Error("unknown export format accepted")
	}
}

func TestSQLiteBackend(t *testing.T) {
	dir := t.TempDir()
	it := addItem(t, dir, "Stretch", "--backend", "sqlite", "--days", "Seg,Qua", "--start", "2024-03-04")
	mustRun(t, dir, "--backend", "sqlite", "done", it.ID)

	if _, err := os.Stat(filepath.Join(dir, "zenflow.db")); err != nil {
		t.Fatalf("database not created: %v", err)
	}
	items := listItems(t, dir, "--backend", "sqlite")
	if len(items) != 1 || !items[0].CompletedOn("2024-03-04") {
		t.Errorf("sqlite items = %+v", items)
	}
	if n := len(listItems(t, dir)); n != 0 {
		t.Errorf("json backend sees %d items written to sqlite", n)
	}

	csv := mustRun(t, dir, "--backend", "sqlite", "export", "--format", "csv")
	if !strings.Contains(csv, it.ID+",Stretch,habit,2024-03-04,1,1,completed") {
		t.Errorf("sqlite csv export = %q", csv)
	}
}

func TestBackupAndRestore(t *testing.T) {
	dir := t.TempDir()
	app := newTestApp()
	clock := testNow
	app.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	do := func(args ...string) string {
		t.Helper()
		out, err := runApp(t, app, dir, args...)
		if err != nil {
			t.Fatalf("zenflow %v: %v\n%s", args, err, out)
		}
		return out
	}

	if out := do("backup", "--list"); !strings.Contains(out, "No backups available.") {
		t.Errorf("empty list = %q", out)
	}

	it := addItem(t, dir, "Journal", "--days", "Seg")
	out := do("backup")
	if !strings.Contains(out, "✓ Backup created:") || !strings.Contains(out, "Items: 1") {
		t.Errorf("backup = %q", out)
	}

	mustRun(t, dir, "rm", it.ID, "--yes")
	out = do("restore", "--latest")
	if !strings.Contains(out, "✓ Restored from") {
		t.Errorf("restore = %q", out)
	}
	if items := listItems(t, dir); len(items) != 1 || items[0].ID != it.ID {
		t.Errorf("items after restore = %+v", items)
	}

	// The restore kept a safety backup of the emptied store.
	out = do("backup", "--list")
	if strings.Count(out, "Items:") != 2 {
		t.Errorf("list after restore = %q", out)
	}
	if out := do("backup", "--prune", "1"); !strings.Contains(out, "Pruned 1 backups") {
		t.Errorf("prune = %q", out)
	}

	for _, args := range [][]string{{"restore"}, {"restore", "--latest", "2024-03-04_090000_000"}} {
		if _, err := runApp(t, app, dir, args...); err == nil {
			t.Errorf("zenflow %v succeeded", args)
		}
	}
}

func TestVersion(t *testing.T) {
	out := mustRun(t, t.TempDir(), "version")
	if !strings.HasPrefix(out, "zenflow version dev\n") {
		t.Errorf("version = %q", out)
	}
}

func TestBadConfig(t *testing.T) {
	dir := t.TempDir()
	if _, err := run(t, dir, "--backend", "mongo", "list"); err == nil || !strings.Contains(err.Error(), "unknown backend") {
		t.Errorf("unknown backend = %v", err)
	}
	if _, err := run(t, dir, "--backend", "remote", "list"); err == nil || !strings.Contains(err.Error(), "remote.url") {
		t.Errorf("remote without url = %v", err)
	}

	cfgPath := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(cfgPath, []byte("backend: [json"), 0o600); err != nil {
		t.Fatal(err)
	}
	app := newTestApp()
	cmd := newRootCmd(app)
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetArgs([]string{"--config", cfgPath, "list"})
	if err := cmd.Execute(); err == nil {
		t.Error("malformed config accepted")
	}
}

func TestFormatAge(t *testing.T) {
	tests := []struct {
		age  time.Duration
		want string
	}{
		{10 * time.Second, "just now"},
		{time.Minute, "1 minute ago"},
		{5 * time.Minute, "5 minutes ago"},
		{3 * time.Hour, "3 hours ago"},
		{24 * time.Hour, "1 day ago"},
		{15 * 24 * time.Hour, "2 weeks ago"},
	}
	for _, tc := range tests {
		if got := formatAge(tc.age); got != tc.want {
			t.Errorf("formatAge(%v) = %q, want %q", tc.age, got, tc.want)
		}
	}
}
