package journal

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/stretchr/testify/require"

	"chronoforge/internal/engine"
	"chronoforge/internal/storage"
)

const (
	owner engine.Address = "0x00000000000000000000000000000000000000aa"
	alice engine.Address = "0x1111111111111111111111111111111111111111"
)

func compileSchema(t *testing.T) *jsonschema.Schema {
	t.Helper()
	s, err := jsonschema.Compile(filepath.Join("..", "..", "schemas", "event.schema.json"))
	if err != nil {
		t.Fatalf("compile schema: %v", err)
	}
	return s
}

func validate(t *testing.T, s *jsonschema.Schema, rec Record) {
	t.Helper()
	raw, err := json.Marshal(rec)
	require.NoError(t, err)
	var v any
	require.NoError(t, json.Unmarshal(raw, &v))
	if err := s.Validate(v); err != nil {
		t.Fatalf("record %d (%s) does not match schema: %v", rec.Seq, rec.Kind, err)
	}
}

func TestJournalRecordsCommittedEvents(t *testing.T) {
	ctx := context.Background()
	db, err := storage.Open(ctx, filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	defer db.Close()

	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	dir := filepath.Join(t.TempDir(), "journal")
	w := NewWriter(dir)

	svc := engine.NewService(db,
		engine.WithClock(engine.ClockFunc(func() time.Time { return now })),
		engine.WithSinks(w),
	)
	require.NoError(t, svc.Deploy(ctx, owner))
	res, err := svc.Mint(ctx, alice, svc.Rules().MintPrice)
	require.NoError(t, err)

	// Rejected operations never reach the journal.
	_, err = svc.Energize(ctx, alice, res.TokenID)
	require.Error(t, err)

	now = now.Add(25 * time.Hour)
	_, err = svc.Energize(ctx, alice, res.TokenID)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	files, err := ListFiles(dir)
	require.NoError(t, err)
	require.Len(t, files, 2, "events span two hours")

	recs, err := ReadDir(dir)
	require.NoError(t, err)

	var kinds []engine.EventKind
	for _, r := range recs {
		kinds = append(kinds, r.Kind)
	}
	want := []engine.EventKind{engine.EventDeployed, engine.EventTransfer, engine.EventMinted, engine.EventEnergized}
	if diff := cmp.Diff(want, kinds); diff != "" {
		t.Fatalf("journal kinds mismatch (-want +got):\n%s", diff)
	}

	schema := compileSchema(t)
	seen := map[string]bool{}
	for i, r := range recs {
		validate(t, schema, r)
		if seen[r.ID] {
			t.Fatalf("duplicate record id %s", r.ID)
		}
		seen[r.ID] = true
		if i > 0 && r.Seq <= recs[i-1].Seq {
			t.Fatalf("seq not increasing: %d after %d", r.Seq, recs[i-1].Seq)
		}
	}

	var energized engine.EnergizedData
	require.NoError(t, json.Unmarshal(recs[3].Data, &energized))
	if diff := cmp.Diff(engine.EnergizedData{TokenID: res.TokenID, Gain: 50, Streak: 1}, energized); diff != "" {
		t.Fatalf("energized data mismatch (-want +got):\n%s", diff)
	}
}

func TestWriterAppendsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	at := time.Date(2025, 3, 1, 9, 15, 0, 0, time.UTC)
	id := int64(3)

	for seq := int64(1); seq <= 2; seq++ {
		w := NewWriter(dir)
		rec, err := NewRecord(engine.Event{
			Seq:     seq,
			Kind:    engine.EventCleansed,
			TokenID: &id,
			At:      at,
			Data:    engine.CleansedData{TokenID: id, Trait: "Fire Boost", Purity: 100},
		})
		require.NoError(t, err)
		require.NoError(t, w.Write(rec))
		require.NoError(t, w.Close())
	}

	files, err := ListFiles(dir)
	require.NoError(t, err)
	require.Equal(t, []string{filepath.Join(dir, "events-2025-03-01-09.jsonl.zst")}, files)

	recs, err := ReadFile(files[0])
	require.NoError(t, err)
	require.Len(t, recs, 2)
	require.Equal(t, int64(1), recs[0].Seq)
	require.Equal(t, int64(2), recs[1].Seq)
	require.True(t, bytes.Contains(recs[1].Data, []byte(`"Fire Boost"`)))
}

func TestRecordsReadableWhileWriterOpen(t *testing.T) {
	dir := t.TempDir()
	at := time.Date(2025, 3, 1, 9, 15, 0, 0, time.UTC)
	id := int64(7)

	w := NewWriter(dir)
	defer w.Close()
	for seq := int64(1); seq <= 3; seq++ {
		require.NoError(t, w.Publish(context.Background(), engine.Event{
			Seq:     seq,
			Kind:    engine.EventEnergized,
			TokenID: &id,
			At:      at.Add(time.Duration(seq) * time.Minute),
			Data:    engine.EnergizedData{TokenID: id, Gain: 10, Streak: seq},
		}))

		recs, err := ReadDir(dir)
		require.NoError(t, err)
		require.Len(t, recs, int(seq))
		require.Equal(t, seq, recs[seq-1].Seq)
	}
}

func TestSchemaRejectsMalformedRecord(t *testing.T) {
	schema := compileSchema(t)
	var v any
	require.NoError(t, json.Unmarshal([]byte(`{
	  "id": "not-a-uuid",
	  "seq": 0,
	  "kind": "Teleported",
	  "at": "2025-03-01T12:00:00Z",
	  "data": {}
	}`), &v))
	if err := schema.Validate(v); err == nil {
		t.Fatalf("expected schema violation")
	}
}
