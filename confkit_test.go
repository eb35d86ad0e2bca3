package confkit

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/confkit/confkit/eval"
	"github.com/confkit/confkit/ir"
	"github.com/confkit/confkit/ir/npath"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadPlain(t *testing.T) {
	root, err := LoadBytes([]byte(`{"config":{"#param": 7}}`))
	if err != nil {
		t.Fatal(err)
	}
	n, err := root.At(npath.MustParse("/param"))
	if err != nil {
		t.Fatal(err)
	}
	if n == nil || n.Value != uint64(7) && n.Value != int64(7) {
		t.Fatalf("/param = %v", n)
	}
}

func TestLoadResolves(t *testing.T) {
	root, err := LoadBytes([]byte(`{"config":{
		"defaults": {"#timeout": 30, "#retries": 3},
		"service": {"base": "/defaults", "#retries": 5}
	}}`))
	if err != nil {
		t.Fatal(err)
	}
	if !root.Resolved() {
		t.Fatal("Load returned an unresolved tree")
	}
	svc := root.Member("service")
	if got := svc.Member("retries").Value; got != uint64(5) && got != int64(5) {
		t.Errorf("retries = %v", got)
	}
	if svc.Member("timeout") == nil {
		t.Error("timeout not inherited")
	}
}

func TestLoadCycleError(t *testing.T) {
	_, err := LoadBytes([]byte(`{"config":{"&x": "/y", "&y": "/x"}}`))
	if !errors.Is(err, ir.ErrCycle) {
		t.Fatalf("err = %v, want ErrCycle", err)
	}
}

func TestLoadFileWithIncludeAndAlias(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "common.json", `{"config":{
		"db": {"#host": "localhost", "#port": 5432}
	}}`)
	main := writeFile(t, dir, "main.json", `{
		"includes": [{"type": "file", "path": "common.json", "destination_node": "/shared"}],
		"config": {
			"&primary": "/shared/db",
			"&viaAlias": "$common/db/host"
		}
	}`)
	root, err := Load(main)
	if err != nil {
		t.Fatal(err)
	}
	if got := root.Member("primary").Member("port").Value; got != uint64(5432) && got != int64(5432) {
		t.Errorf("primary.port = %v", got)
	}
	if got := root.Member("viaAlias").Value; got != "localhost" {
		t.Errorf("viaAlias = %v", got)
	}
}

func TestLoadWithDotenvAndOverrides(t *testing.T) {
	dir := t.TempDir()
	dotenv := writeFile(t, dir, ".env", "LEVEL=debug\n")
	main := writeFile(t, dir, "main.json", `{
		"config": {"#level": "${LEVEL}", "#mode": "${MODE}"}
	}`)
	x := eval.NewExpanderFrom(map[string]string{"MODE": "fast"})
	root, err := Load(main, WithExpander(x), WithDotenv(dotenv))
	if err != nil {
		t.Fatal(err)
	}
	if got := root.Member("level").Value; got != "debug" {
		t.Errorf("level = %v", got)
	}
	if got := root.Member("mode").Value; got != "fast" {
		t.Errorf("mode = %v", got)
	}
}

func TestLoadMaxPasses(t *testing.T) {
	_, err := LoadBytes([]byte(`{"config":{
		"#v": 0,
		"&a": "/v", "&b": "/a", "&c": "/b", "&d": "/c"
	}}`), WithMaxPasses(2))
	if !errors.Is(err, ir.ErrCycle) {
		t.Fatalf("err = %v, want ErrCycle (cap)", err)
	}
}

func TestStructuralDiff(t *testing.T) {
	a, err := LoadBytes([]byte(`{"config":{"#x": 1, "#y": 2}}`))
	if err != nil {
		t.Fatal(err)
	}
	b, err := LoadBytes([]byte(`{"config":{"#x": 1, "#y": 3}}`))
	if err != nil {
		t.Fatal(err)
	}
	patch, err := StructuralDiff(a, b)
	if err != nil {
		t.Fatal(err)
	}
	if string(patch) == "{}" {
		t.Error("diff is empty for differing trees")
	}

	eq, err := Equivalent(a, a.Clone())
	if err != nil {
		t.Fatal(err)
	}
	if !eq {
		t.Error("tree not equivalent to its clone")
	}
	eq, err = Equivalent(a, b)
	if err != nil {
		t.Fatal(err)
	}
	if eq {
		t.Error("differing trees reported equivalent")
	}
}

func TestEquivalentIgnoresOrder(t *testing.T) {
	a, err := LoadBytes([]byte(`{"config":{"#x": 1, "#y": 2}}`))
	if err != nil {
		t.Fatal(err)
	}
	b, err := LoadBytes([]byte(`{"config":{"#y": 2, "#x": 1}}`))
	if err != nil {
		t.Fatal(err)
	}
	eq, err := Equivalent(a, b)
	if err != nil {
		t.Fatal(err)
	}
	if !eq {
		t.Error("order-only difference reported as inequivalent")
	}
}
