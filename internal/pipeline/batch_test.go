package pipeline

import (
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/taxlens/invoice-analyzer/constants"
	"github.com/taxlens/invoice-analyzer/internal/entity"
)

func sampleOutcome(n int) *BatchOutcome {
	out := &BatchOutcome{BatchID: uuid.New()}
	for i := 0; i < n; i++ {
		name := string(rune('a'+i)) + ".pdf"
		out.Documents = append(out.Documents, Document{
			FileID:   uuid.New(),
			JobID:    uuid.New(),
			Filename: name,
			Record: entity.InvoiceRecord{
				FileName:  name,
				InvoiceNo: "INV-" + name,
			},
		})
	}
	return out
}

func TestDirectModeAcceptsEverything(t *testing.T) {
	s := NewBatchSession(sampleOutcome(3), constants.BatchModeDirect)
	if !s.Done() {
		t.Fatal("direct mode session should start complete")
	}
	if got := len(s.Records()); got != 3 {
		t.Fatalf("accepted %d records, want 3", got)
	}
	if _, err := s.Current(); !errors.Is(err, ErrSessionComplete) {
		t.Errorf("Current on complete session: %v", err)
	}
}

func TestVerifyAdvancesAndKeepsFileName(t *testing.T) {
	s := NewBatchSession(sampleOutcome(2), constants.BatchModeVerify)
	if s.Done() {
		t.Fatal("verify mode session should start pending")
	}
	if s.Remaining() != 2 {
		t.Fatalf("remaining = %d, want 2", s.Remaining())
	}

	cur, err := s.Current()
	if err != nil {
		t.Fatalf("current: %v", err)
	}
	if cur.Filename != "a.pdf" {
		t.Fatalf("cursor starts at %q", cur.Filename)
	}

	// Edited record: the reviewer fixed the invoice number and tried to
	// rename the file, which must not stick.
	err = s.Verify(entity.InvoiceRecord{
		FileName:  "renamed.pdf",
		InvoiceNo: "INV-CORRECTED",
	})
	if err != nil {
		t.Fatalf("verify: %v", err)
	}

	recs := s.Records()
	if len(recs) != 1 {
		t.Fatalf("accepted %d records, want 1", len(recs))
	}
	if recs[0].FileName != "a.pdf" {
		t.Errorf("file name = %q, want the document's own", recs[0].FileName)
	}
	if recs[0].InvoiceNo != "INV-CORRECTED" {
		t.Errorf("correction lost: %q", recs[0].InvoiceNo)
	}
	if recs[0].Items == nil {
		t.Error("items should default to an empty slice")
	}

	cur, err = s.Current()
	if err != nil {
		t.Fatalf("current after verify: %v", err)
	}
	if cur.Filename != "b.pdf" {
		t.Errorf("cursor did not advance: %q", cur.Filename)
	}
}

func TestSkipAcceptsExtractedRecordAsIs(t *testing.T) {
	s := NewBatchSession(sampleOutcome(2), constants.BatchModeVerify)
	if err := s.Skip(); err != nil {
		t.Fatalf("skip: %v", err)
	}
	recs := s.Records()
	if len(recs) != 1 || recs[0].InvoiceNo != "INV-a.pdf" {
		t.Fatalf("skip stored %+v", recs)
	}
	if s.Remaining() != 1 {
		t.Errorf("remaining = %d, want 1", s.Remaining())
	}
}

func TestPreviousIsPositionalUndo(t *testing.T) {
	s := NewBatchSession(sampleOutcome(3), constants.BatchModeVerify)

	if err := s.Previous(); !errors.Is(err, ErrAtFirstDocument) {
		t.Fatalf("previous at start: %v", err)
	}

	if err := s.Verify(entity.InvoiceRecord{InvoiceNo: "ONE"}); err != nil {
		t.Fatal(err)
	}
	if err := s.Skip(); err != nil {
		t.Fatal(err)
	}

	// Undo drops the skip result and points the cursor back at b.pdf.
	if err := s.Previous(); err != nil {
		t.Fatalf("previous: %v", err)
	}
	recs := s.Records()
	if len(recs) != 1 || recs[0].InvoiceNo != "ONE" {
		t.Fatalf("undo did not pop the last accepted record: %+v", recs)
	}
	cur, err := s.Current()
	if err != nil {
		t.Fatalf("current after undo: %v", err)
	}
	if cur.Filename != "b.pdf" {
		t.Errorf("cursor after undo = %q, want b.pdf", cur.Filename)
	}

	// The undo is positional: stepping back again from b drops ONE even
	// though it was a's record.
	if err := s.Previous(); err != nil {
		t.Fatalf("second previous: %v", err)
	}
	if got := len(s.Records()); got != 0 {
		t.Errorf("accepted after double undo = %d, want 0", got)
	}
}

func TestWizardCompletion(t *testing.T) {
	s := NewBatchSession(sampleOutcome(2), constants.BatchModeVerify)
	if err := s.Skip(); err != nil {
		t.Fatal(err)
	}
	if err := s.Verify(entity.InvoiceRecord{InvoiceNo: "X"}); err != nil {
		t.Fatal(err)
	}
	if !s.Done() {
		t.Fatal("session should be complete")
	}
	if err := s.Skip(); !errors.Is(err, ErrSessionComplete) {
		t.Errorf("skip after completion: %v", err)
	}
	if err := s.Verify(entity.InvoiceRecord{}); !errors.Is(err, ErrSessionComplete) {
		t.Errorf("verify after completion: %v", err)
	}

	st := s.Status()
	if !st.Done || st.Accepted != 2 || st.Remaining != 0 || st.Total != 2 {
		t.Errorf("status = %+v", st)
	}
}

func TestStatusCarriesFailures(t *testing.T) {
	out := sampleOutcome(1)
	out.Failed = append(out.Failed, FailedFile{
		FileID:   uuid.New(),
		Filename: "broken.pdf",
		Reason:   "empty transcript",
	})
	s := NewBatchSession(out, constants.BatchModeVerify)
	st := s.Status()
	if len(st.Failed) != 1 || st.Failed[0].Filename != "broken.pdf" {
		t.Errorf("failed files missing from status: %+v", st.Failed)
	}
	if got := s.FailedFiles(); len(got) != 1 {
		t.Errorf("FailedFiles = %+v", got)
	}
}
