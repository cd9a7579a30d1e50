package serialize

import (
	"bytes"
	"sync"
	"testing"

	"github.com/hugr-lab/filterql/schema"
)

func TestSerializeEntities(t *testing.T) {
	reg, err := schema.LoadFile("../../testdata/recipes.yaml")
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}

	data, err := SerializeEntities(reg)
	if err != nil {
		t.Fatalf("SerializeEntities() error = %v", err)
	}
	got, err := DeserializeEntities(data)
	if err != nil {
		t.Fatalf("DeserializeEntities() error = %v", err)
	}
	if len(got) != 6 {
		t.Fatalf("got %d entities, want 6", len(got))
	}

	var recipes *EntityDescription
	for i := range got {
		if got[i].Name == "recipes" {
			recipes = &got[i]
		}
	}
	if recipes == nil {
		t.Fatal("recipes entity missing")
	}
	if recipes.PrimaryKey != "id" || recipes.Table != "recipes" {
		t.Errorf("recipes = %+v", recipes)
	}

	var computed bool
	for _, f := range recipes.Fields {
		if f.Name == "comment_count" {
			computed = f.Computed
			if f.Type != "integer" {
				t.Errorf("comment_count type = %s, want integer", f.Type)
			}
		}
	}
	if !computed {
		t.Error("comment_count should be reported as computed")
	}

	var through string
	for _, r := range recipes.Relations {
		if r.Name == "tags" {
			through = r.Through
			if r.Cardinality != "many" {
				t.Errorf("tags cardinality = %s, want many", r.Cardinality)
			}
		}
	}
	if through != "recipes_to_tags" {
		t.Errorf("tags through = %q, want recipes_to_tags", through)
	}
}

func TestCompressRoundTrip(t *testing.T) {
	in := bytes.Repeat([]byte("category.name IN [dinner, lunch] AND "), 64)
	compressed, err := Compress(in)
	if err != nil {
		t.Fatalf("Compress() error = %v", err)
	}
	if len(compressed) >= len(in) {
		t.Errorf("compressed %d bytes into %d", len(in), len(compressed))
	}
	out, err := Decompress(compressed)
	if err != nil {
		t.Fatalf("Decompress() error = %v", err)
	}
	if !bytes.Equal(in, out) {
		t.Error("round trip mismatch")
	}

	if empty, _ := Compress(nil); len(empty) != 0 {
		t.Error("empty input should compress to empty output")
	}
	if _, err := Decompress([]byte("not zstd")); err == nil {
		t.Error("expected error for invalid input")
	}
}

func TestCompressConcurrent(t *testing.T) {
	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			in := bytes.Repeat([]byte{byte('a' + i)}, 1024)
			compressed, err := Compress(in)
			if err != nil {
				t.Errorf("Compress() error = %v", err)
				return
			}
			out, err := Decompress(compressed)
			if err != nil || !bytes.Equal(in, out) {
				t.Errorf("goroutine %d: round trip failed: %v", i, err)
			}
		}()
	}
	wg.Wait()
}
