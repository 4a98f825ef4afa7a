package journal

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"
	"time"

	"github.com/keyxmakerx/reverie/internal/apperror"
	"github.com/keyxmakerx/reverie/internal/plugins/media"
	"github.com/keyxmakerx/reverie/internal/plugins/mood"
)

// --- Mock Repository ---

type mockEntryRepo struct {
	entries     map[string]*Entry
	putFn       func(ctx context.Context, entry *Entry) error
	setSketchFn func(ctx context.Context, userID, date string, u SketchUpdate) error
}

func newMockRepo() *mockEntryRepo {
	return &mockEntryRepo{entries: map[string]*Entry{}}
}

func key(userID, date string) string { return userID + "/" + date }

func (m *mockEntryRepo) Get(_ context.Context, userID, date string) (*Entry, error) {
	if e, ok := m.entries[key(userID, date)]; ok {
		cp := *e
		return &cp, nil
	}
	return nil, apperror.NewNotFound("journal entry not found")
}

func (m *mockEntryRepo) Put(ctx context.Context, entry *Entry) error {
	if m.putFn != nil {
		return m.putFn(ctx, entry)
	}
	e, ok := m.entries[key(entry.UserID, entry.Date)]
	if !ok {
		e = &Entry{UserID: entry.UserID, Date: entry.Date, SketchStatus: SketchNone}
		m.entries[key(entry.UserID, entry.Date)] = e
	}
	e.Text = entry.Text
	return nil
}

func (m *mockEntryRepo) List(_ context.Context, userID string) ([]Entry, error) {
	var out []Entry
	for _, e := range m.entries {
		if e.UserID == userID {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (m *mockEntryRepo) All(ctx context.Context, userID string) (map[string]Entry, error) {
	list, _ := m.List(ctx, userID)
	out := map[string]Entry{}
	for _, e := range list {
		out[e.Date] = e
	}
	return out, nil
}

func (m *mockEntryRepo) SetSketch(ctx context.Context, userID, date string, u SketchUpdate) error {
	if m.setSketchFn != nil {
		return m.setSketchFn(ctx, userID, date, u)
	}
	e, ok := m.entries[key(userID, date)]
	if !ok {
		return apperror.NewNotFound("journal entry not found")
	}
	e.SketchStatus = u.Status
	e.SketchError = u.Error
	if u.MediaID != "" {
		e.SketchID = u.MediaID
	}
	return nil
}

func (m *mockEntryRepo) ListNeedingSketch(context.Context, time.Time, int) ([]Entry, error) {
	return nil, nil
}

// --- Fakes ---

type fakeRequester struct {
	calls []string
	err   error
}

func (f *fakeRequester) RequestSketch(userID, date, text string) error {
	f.calls = append(f.calls, date+":"+text)
	return f.err
}

type fakeImporter struct {
	calls int
	err   error
}

func (f *fakeImporter) ImportDataURL(_ context.Context, userID, dataURL string) (*media.MediaFile, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &media.MediaFile{ID: "m" + string(rune('0'+f.calls)), UserID: userID}, nil
}

// --- Helpers ---

func assertAppError(t *testing.T, err error, expectedCode int) {
	t.Helper()
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected AppError, got %T: %v", err, err)
	}
	if appErr.Code != expectedCode {
		t.Errorf("expected status %d, got %d (%s)", expectedCode, appErr.Code, appErr.Message)
	}
}

var fixedNow = time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

func newTestService(repo EntryRepository, req SketchRequester, imp MediaImporter) *journalService {
	svc := NewJournalService(repo, imp, req, time.UTC).(*journalService)
	svc.now = func() time.Time { return fixedNow }
	return svc
}

const longText = "A long walk by the sea with friends."

// --- Tests ---

func TestDay_Navigation(t *testing.T) {
	svc := newTestService(newMockRepo(), nil, nil)

	today, err := svc.Day("")
	if err != nil {
		t.Fatal(err)
	}
	if today.Date != "2024-03-15" || !today.IsToday || today.Next != "" || today.Prev != "2024-03-14" {
		t.Errorf("unexpected today %+v", today)
	}

	past, err := svc.Day("2024-02-29")
	if err != nil {
		t.Fatal(err)
	}
	if past.Next != "2024-03-01" || past.Prev != "2024-02-28" || past.IsToday {
		t.Errorf("unexpected day %+v", past)
	}
	if past.Label != "Thursday, February 29, 2024" {
		t.Errorf("unexpected label %q", past.Label)
	}

	_, err = svc.Day("2024-03-16")
	assertAppError(t, err, 422)
	_, err = svc.Day("15/03/2024")
	assertAppError(t, err, 422)
}

func TestDay_UsesConfiguredTimezone(t *testing.T) {
	loc := time.FixedZone("UTC+12", 12*3600)
	svc := NewJournalService(newMockRepo(), nil, nil, loc).(*journalService)
	svc.now = func() time.Time { return time.Date(2024, 3, 15, 20, 0, 0, 0, time.UTC) }
	if got := svc.Today(); got != "2024-03-16" {
		t.Errorf("expected 2024-03-16, got %s", got)
	}
}

func TestGet_MissingIsEmpty(t *testing.T) {
	svc := newTestService(newMockRepo(), nil, nil)
	e, err := svc.Get(context.Background(), "u1", "2024-03-01")
	if err != nil {
		t.Fatal(err)
	}
	if e.Text != "" || e.SketchStatus != SketchNone || e.Date != "2024-03-01" {
		t.Errorf("unexpected entry %+v", e)
	}
}

func TestSave_RejectsBlankAndFuture(t *testing.T) {
	svc := newTestService(newMockRepo(), nil, nil)
	ctx := context.Background()

	_, err := svc.Save(ctx, "u1", "2024-03-15", "   \n ")
	assertAppError(t, err, 422)

	_, err = svc.Save(ctx, "u1", "2099-01-01", longText)
	assertAppError(t, err, 422)
}

func TestSave_QueuesSketch(t *testing.T) {
	repo := newMockRepo()
	req := &fakeRequester{}
	svc := newTestService(repo, req, nil)

	e, err := svc.Save(context.Background(), "u1", "2024-03-15", "\r\n "+longText+" \n")
	if err != nil {
		t.Fatal(err)
	}
	if e.Text != longText {
		t.Errorf("expected trimmed text, got %q", e.Text)
	}
	if e.SketchStatus != SketchPending {
		t.Errorf("expected pending, got %s", e.SketchStatus)
	}
	if len(req.calls) != 1 {
		t.Fatalf("expected one sketch request, got %v", req.calls)
	}
	if repo.entries[key("u1", "2024-03-15")].SketchStatus != SketchPending {
		t.Error("pending status not persisted")
	}
}

func TestSave_KeepsAngleBracketsAsTyped(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo, nil, nil)
	ctx := context.Background()

	for _, text := range []string{
		"if x<y then I feel glad",
		"feeling <sad and stressed> lately",
		"line one\nline <two>",
	} {
		if _, err := svc.Save(ctx, "u1", "2024-03-15", text); err != nil {
			t.Fatalf("Save(%q): %v", text, err)
		}
		e, err := svc.Get(ctx, "u1", "2024-03-15")
		if err != nil {
			t.Fatal(err)
		}
		if e.Text != text {
			t.Errorf("stored %q, want %q", e.Text, text)
		}
	}

	if _, err := svc.Save(ctx, "u1", "2024-03-14", "if x<y then I feel glad"); err != nil {
		t.Fatal(err)
	}
	e, err := svc.Get(ctx, "u1", "2024-03-14")
	if err != nil {
		t.Fatal(err)
	}
	if n := mood.CountMoods(e.Text)[mood.Happy]; n != 1 {
		t.Errorf("expected 1 happy word, got %d", n)
	}
}

func TestSave_ShortTextNoSketch(t *testing.T) {
	req := &fakeRequester{}
	svc := newTestService(newMockRepo(), req, nil)

	e, err := svc.Save(context.Background(), "u1", "2024-03-15", "  ten chars ")
	if err != nil {
		t.Fatal(err)
	}
	if len(req.calls) != 0 || e.SketchStatus != SketchNone {
		t.Errorf("expected no sketch for short text, got %v / %s", req.calls, e.SketchStatus)
	}
}

func TestSave_UnchangedTextWithSketchIsNotRedrawn(t *testing.T) {
	repo := newMockRepo()
	repo.entries[key("u1", "2024-03-15")] = &Entry{UserID: "u1", Date: "2024-03-15", Text: longText, SketchID: "m1", SketchStatus: SketchReady}
	req := &fakeRequester{}
	svc := newTestService(repo, req, nil)

	if _, err := svc.Save(context.Background(), "u1", "2024-03-15", longText); err != nil {
		t.Fatal(err)
	}
	if len(req.calls) != 0 {
		t.Errorf("expected no new sketch, got %v", req.calls)
	}

	if _, err := svc.Save(context.Background(), "u1", "2024-03-15", longText+" Then rain."); err != nil {
		t.Fatal(err)
	}
	if len(req.calls) != 1 {
		t.Errorf("expected a new sketch for changed text, got %v", req.calls)
	}
}

func TestSave_RejectedRequestMarksFailedButKeepsText(t *testing.T) {
	repo := newMockRepo()
	req := &fakeRequester{err: errors.New("queue full")}
	svc := newTestService(repo, req, nil)

	e, err := svc.Save(context.Background(), "u1", "2024-03-15", longText)
	if err != nil {
		t.Fatalf("save must succeed even when the sketch cannot start: %v", err)
	}
	want := "Could not generate image: queue full. Saving text only."
	if e.SketchStatus != SketchFailed || e.SketchError != want {
		t.Errorf("unexpected sketch state %s %q", e.SketchStatus, e.SketchError)
	}
	if repo.entries[key("u1", "2024-03-15")].Text != longText {
		t.Error("text was not persisted")
	}
}

func TestSave_PutFailure(t *testing.T) {
	repo := newMockRepo()
	repo.putFn = func(context.Context, *Entry) error { return errors.New("db down") }
	svc := newTestService(repo, &fakeRequester{}, nil)

	_, err := svc.Save(context.Background(), "u1", "2024-03-15", longText)
	assertAppError(t, err, 500)
}

func TestMoods(t *testing.T) {
	repo := newMockRepo()
	repo.entries[key("u1", "2024-03-10")] = &Entry{UserID: "u1", Date: "2024-03-10", Text: "So stressed and sad today"}
	svc := newTestService(repo, nil, nil)

	d, err := svc.Moods(context.Background(), "u1", "2024-03-10")
	if err != nil {
		t.Fatal(err)
	}
	if len(d.Labels) != 2 || d.Labels[0] != "sad" || d.Labels[1] != "stress" {
		t.Errorf("unexpected labels %v", d.Labels)
	}
	if len(d.Suggestions) == 0 {
		t.Error("expected supportive suggestions for distress moods")
	}
}

func TestExport(t *testing.T) {
	repo := newMockRepo()
	repo.entries[key("u1", "2024-03-10")] = &Entry{UserID: "u1", Date: "2024-03-10", Text: "hello", SketchID: "m9"}
	repo.entries[key("u2", "2024-03-10")] = &Entry{UserID: "u2", Date: "2024-03-10", Text: "other"}
	svc := newTestService(repo, nil, nil)

	out, err := svc.Export(context.Background(), "u1")
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 1 || out["2024-03-10"].Text != "hello" || out["2024-03-10"].Sketch != "/media/m9" {
		t.Errorf("unexpected export %+v", out)
	}
}

func TestImport(t *testing.T) {
	repo := newMockRepo()
	imp := &fakeImporter{}
	svc := newTestService(repo, &fakeRequester{}, imp)

	sketch := "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("png"))
	blob := `{
		"2024-01-01": {"text": "New year, happy start", "sketch": "` + sketch + `"},
		"2024-01-02": "legacy plain text",
		"2099-01-01": {"text": "future"},
		"not-a-date": {"text": "nope"},
		"2024-01-03": {"text": ""},
		"2024-01-04": 42
	}`

	res, err := svc.Import(context.Background(), "u1", []byte(blob))
	if err != nil {
		t.Fatal(err)
	}
	if res.Imported != 2 || res.Sketches != 1 || res.Skipped != 4 {
		t.Errorf("unexpected result %+v", res)
	}
	if e := repo.entries[key("u1", "2024-01-01")]; e == nil || e.SketchStatus != SketchReady || e.SketchID == "" {
		t.Errorf("expected imported sketch attached, got %+v", e)
	}
	if e := repo.entries[key("u1", "2024-01-02")]; e == nil || e.Text != "legacy plain text" {
		t.Errorf("expected legacy entry imported, got %+v", e)
	}
}

func TestImport_KeepsAngleBrackets(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo, nil, nil)

	blob := `{"2024-01-05": {"text": "I was <happy> today and calm"}}`
	if _, err := svc.Import(context.Background(), "u1", []byte(blob)); err != nil {
		t.Fatal(err)
	}
	e := repo.entries[key("u1", "2024-01-05")]
	if e == nil || e.Text != "I was <happy> today and calm" {
		t.Fatalf("expected text imported as written, got %+v", e)
	}
	if d := mood.DetectMoodLabels(e.Text); len(d.Labels) != 2 {
		t.Errorf("expected happy and calm, got %v", d.Labels)
	}
}

func TestImport_MalformedImportsNothing(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo, nil, nil)

	for _, blob := range []string{`[1,2]`, `{"2024-01-01": `, `"text"`} {
		_, err := svc.Import(context.Background(), "u1", []byte(blob))
		assertAppError(t, err, 422)
	}
	if len(repo.entries) != 0 {
		t.Errorf("expected nothing imported, got %d entries", len(repo.entries))
	}
}

func TestImport_BadSketchKeepsText(t *testing.T) {
	repo := newMockRepo()
	imp := &fakeImporter{err: apperror.NewValidation("not an image")}
	svc := newTestService(repo, nil, imp)

	res, err := svc.Import(context.Background(), "u1", []byte(`{"2024-01-01": {"text": "kept", "sketch": "data:image/png;base64,AAAA"}}`))
	if err != nil {
		t.Fatal(err)
	}
	if res.Imported != 1 || res.Sketches != 0 {
		t.Errorf("unexpected result %+v", res)
	}
}

func TestNeedsSketch(t *testing.T) {
	cases := []struct {
		name string
		old  *Entry
		text string
		want bool
	}{
		{"new long entry", nil, longText, true},
		{"exactly ten chars", nil, "0123456789", false},
		{"eleven chars", nil, "0123456789a", true},
		{"unchanged with sketch", &Entry{Text: longText, SketchID: "m"}, longText, false},
		{"unchanged failed", &Entry{Text: longText, SketchStatus: SketchFailed}, longText, true},
		{"unchanged pending", &Entry{Text: longText, SketchStatus: SketchPending}, longText, false},
		{"changed with sketch", &Entry{Text: longText, SketchID: "m"}, longText + "!", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := NeedsSketch(tc.old, tc.text); got != tc.want {
				t.Errorf("NeedsSketch = %v, want %v", got, tc.want)
			}
		})
	}
}
