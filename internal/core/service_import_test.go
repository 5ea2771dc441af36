package core

import (
	"context"
	"errors"
	"testing"
)

const driveTSV = "questionText\tanswerText\nQ1\tA1\nQ2\tA2"

func newImportService(store *fakeStore, source FileSource) *Service {
	return newService(nil, store, ServiceConfig{ImportConcurrency: 2}, source)
}

func TestImportExternal(t *testing.T) {
	store := newFakeStore()
	src := &fakeSource{files: map[string][]byte{"file-1": []byte(driveTSV)}}
	svc := newImportService(store, src)

	res, err := svc.ImportExternal(context.Background(), 7, ExternalFile{FileID: "file-1", SetName: "Round 1"}, "music")
	if err != nil {
		t.Fatalf("ImportExternal() error = %v", err)
	}
	if res.AlreadyImported {
		t.Error("AlreadyImported = true on first import")
	}
	if res.Result == nil || res.Result.Imported != 2 {
		t.Fatalf("Result = %+v, want 2 imported", res.Result)
	}

	set := store.get(res.SetID)
	if set == nil {
		t.Fatalf("set %d not stored", res.SetID)
	}
	if set.ExternalID != "file-1" {
		t.Errorf("ExternalID = %q, want file-1", set.ExternalID)
	}
	if set.Description != DriveImportDescription {
		t.Errorf("Description = %q, want %q", set.Description, DriveImportDescription)
	}
	if set.OwnerID != 7 || set.Tags != "music" || set.Name != "Round 1" {
		t.Errorf("stored set = %+v", set.NewSet)
	}
}

func TestImportExternal_AlreadyImported(t *testing.T) {
	store := newFakeStore()
	id := store.add(fakeSet{NewSet: NewSet{ExternalID: "file-1", OwnerID: 99}, Total: 4})
	src := &fakeSource{files: map[string][]byte{"file-1": []byte(driveTSV)}}
	svc := newImportService(store, src)

	res, err := svc.ImportExternal(context.Background(), 7, ExternalFile{FileID: "file-1", SetName: "Again"}, "")
	if err != nil {
		t.Fatalf("ImportExternal() error = %v", err)
	}
	if !res.AlreadyImported || res.SetID != id {
		t.Errorf("got %+v, want already imported set %d", res, id)
	}
	if src.downloads != 0 {
		t.Errorf("downloads = %d, want 0", src.downloads)
	}
	if store.count() != 1 {
		t.Errorf("sets = %d, want 1", store.count())
	}
}

func TestImportExternal_DeletedSetIsReimported(t *testing.T) {
	store := newFakeStore()
	store.add(fakeSet{NewSet: NewSet{ExternalID: "file-1"}, Deleted: true})
	src := &fakeSource{files: map[string][]byte{"file-1": []byte(driveTSV)}}
	svc := newImportService(store, src)

	res, err := svc.ImportExternal(context.Background(), 7, ExternalFile{FileID: "file-1", SetName: "Back"}, "")
	if err != nil {
		t.Fatalf("ImportExternal() error = %v", err)
	}
	if res.AlreadyImported {
		t.Error("AlreadyImported = true for a deleted set")
	}
	if src.downloads != 1 {
		t.Errorf("downloads = %d, want 1", src.downloads)
	}
}

func TestImportExternal_Latin1(t *testing.T) {
	store := newFakeStore()
	src := &fakeSource{files: map[string][]byte{"f": []byte("questionText\tanswerText\nCaf\xe9?\tOui")}}
	svc := newImportService(store, src)

	res, err := svc.ImportExternal(context.Background(), 1, ExternalFile{FileID: "f", SetName: "French"}, "")
	if err != nil {
		t.Fatalf("ImportExternal() error = %v", err)
	}
	if got := store.get(res.SetID).Questions[0].QuestionText; got != "Café?" {
		t.Errorf("QuestionText = %q, want %q", got, "Café?")
	}
}

func TestImportExternal_Errors(t *testing.T) {
	t.Run("no source", func(t *testing.T) {
		svc := newImportService(newFakeStore(), nil)
		_, err := svc.ImportExternal(context.Background(), 1, ExternalFile{FileID: "f", SetName: "x"}, "")
		if !errors.Is(err, ErrSourceUnavailable) {
			t.Errorf("error = %v, want ErrSourceUnavailable", err)
		}
	})

	t.Run("download fails", func(t *testing.T) {
		svc := newImportService(newFakeStore(), &fakeSource{})
		if _, err := svc.ImportExternal(context.Background(), 1, ExternalFile{FileID: "missing", SetName: "x"}, ""); err == nil {
			t.Error("expected error for missing file")
		}
	})

	t.Run("bad content", func(t *testing.T) {
		store := newFakeStore()
		src := &fakeSource{files: map[string][]byte{"f": []byte("a,b\n1,2")}}
		svc := newImportService(store, src)
		_, err := svc.ImportExternal(context.Background(), 1, ExternalFile{FileID: "f", SetName: "x"}, "")
		if !errors.Is(err, ErrWrongDelimiter) {
			t.Errorf("error = %v, want ErrWrongDelimiter", err)
		}
		if store.count() != 0 {
			t.Errorf("sets = %d, want 0", store.count())
		}
	})
}

func TestImportExternal_Race(t *testing.T) {
	store := newFakeStore()
	store.raceOnCreate = true
	src := &fakeSource{files: map[string][]byte{"file-1": []byte(driveTSV)}}
	svc := newImportService(store, src)

	res, err := svc.ImportExternal(context.Background(), 7, ExternalFile{FileID: "file-1", SetName: "R"}, "")
	if err != nil {
		t.Fatalf("ImportExternal() error = %v", err)
	}
	if res.Result == nil || !res.Result.Duplicate {
		t.Errorf("Result = %+v, want the competing set", res.Result)
	}
	if store.count() != 1 {
		t.Errorf("sets = %d, want 1", store.count())
	}
}

func TestImportBatch(t *testing.T) {
	store := newFakeStore()
	src := &fakeSource{files: map[string][]byte{
		"a": []byte(driveTSV),
		"b": []byte("questionText\tanswerText\nOnly\tOne"),
		"c": []byte("not,a,tsv"),
	}}
	svc := newImportService(store, src)

	files := []ExternalFile{
		{FileID: "a", SetName: "A"},
		{FileID: "missing", SetName: "M"},
		{FileID: "b", SetName: "B"},
		{FileID: "c", SetName: "C"},
	}
	results := svc.ImportBatch(context.Background(), 3, files, "")

	if len(results) != len(files) {
		t.Fatalf("len(results) = %d, want %d", len(results), len(files))
	}
	for i, r := range results {
		if r.FileID != files[i].FileID || r.SetName != files[i].SetName {
			t.Errorf("results[%d] = %s/%s, want %s/%s", i, r.FileID, r.SetName, files[i].FileID, files[i].SetName)
		}
	}

	if results[0].Err != nil || results[0].Result.Imported != 2 {
		t.Errorf("a: %+v", results[0])
	}
	if results[1].Err == nil {
		t.Error("missing: expected error")
	}
	if results[2].Err != nil || results[2].Result.Imported != 1 {
		t.Errorf("b: %+v", results[2])
	}
	if !errors.Is(results[3].Err, ErrWrongDelimiter) {
		t.Errorf("c: error = %v, want ErrWrongDelimiter", results[3].Err)
	}
	if store.count() != 2 {
		t.Errorf("sets = %d, want 2", store.count())
	}
}
