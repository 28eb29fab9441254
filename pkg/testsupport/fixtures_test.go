package testsupport

import (
	"errors"
	"io/fs"
	"reflect"
	"testing"
)

func TestLoadGoldenResolvesNamesInsideTestdata(t *testing.T) {
	var got struct {
		ContentType string   `json:"content_type"`
		Langcodes   []string `json:"langcodes"`
	}
	if err := LoadGolden("revision_fixture.json", &got); err != nil {
		t.Fatalf("LoadGolden() error = %v", err)
	}
	if got.ContentType != "article" || !reflect.DeepEqual(got.Langcodes, []string{"en", "fr"}) {
		t.Fatalf("unexpected fixture %+v", got)
	}
}

func TestLoadFixtureDoesNotNestTestdata(t *testing.T) {
	if _, err := LoadFixture("testdata/revision_fixture.json"); !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected names to be relative to testdata, got %v", err)
	}
}
