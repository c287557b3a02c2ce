package diagram

import (
	"strings"
	"testing"

	"github.com/olehluchkiv/lessons/internal/checker"
	"github.com/stretchr/testify/assert"
)

func feedReport() *checker.Report {
	r := &checker.Report{
		Capabilities: []checker.Capability{
			{Name: "Animal", PkgPath: "example.com/feed", PkgName: "feed", SourceFile: "feed.go",
				Methods: []checker.MethodSig{{Name: "isAnimal", Signature: "isAnimal()"}}},
		},
		Types: []checker.TypeDef{
			{Name: "Dog", PkgPath: "example.com/feed", PkgName: "feed", IsStruct: true},
		},
		Funcs: []checker.FuncDef{
			{Name: "FeedAnimal", PkgPath: "example.com/feed", PkgName: "feed", Signature: "FeedAnimal(feed.Animal)"},
			{Name: "FeedDog", PkgPath: "example.com/feed", PkgName: "feed", Signature: "FeedDog(*feed.Dog)"},
		},
		FuncTypes: []checker.FuncType{
			{Name: "AnimalFeeder", PkgPath: "example.com/feed", PkgName: "feed", Signature: "func(feed.Animal)"},
			{Name: "DogFeeder", PkgPath: "example.com/feed", PkgName: "feed", Signature: "func(*feed.Dog)"},
		},
	}
	r.Relations = []checker.Relation{{Type: &r.Types[0], Capability: &r.Capabilities[0], ViaPointer: true}}
	r.Bindings = []checker.Binding{
		{Func: &r.Funcs[0], Target: &r.FuncTypes[0], Assignable: true, Adaptable: true},
		{Func: &r.Funcs[0], Target: &r.FuncTypes[1], Adaptable: true},
		{Func: &r.Funcs[1], Target: &r.FuncTypes[0]},
		{Func: &r.Funcs[1], Target: &r.FuncTypes[1], Assignable: true, Adaptable: true},
	}
	return r
}

func TestGenerateMermaidFeed(t *testing.T) {
	got := GenerateMermaid(feedReport(), DefaultOptions())

	assert.True(t, strings.HasPrefix(got, "classDiagram\n    direction LR\n"))
	assert.Contains(t, got, "    class feed_Animal {\n        <<interface>>\n        %% file: feed.go\n        +isAnimal()\n    }")
	assert.Contains(t, got, "    class feed_DogFeeder {\n        <<func>>\n        +func(*feed.Dog)\n    }")
	assert.Contains(t, got, "    feed_Dog --|> feed_Animal")
	assert.Contains(t, got, "    feed_FeedAnimal ..> feed_AnimalFeeder : assignable")
	assert.Contains(t, got, "    feed_FeedAnimal ..> feed_DogFeeder : adaptable")
	assert.Contains(t, got, "    feed_FeedDog ..> feed_DogFeeder : assignable")
	assert.NotContains(t, got, "rejected")
	assert.Contains(t, got, `cssClass "feed_AnimalFeeder" funcTypeStyle`)
}

func TestGenerateMermaidShowRejected(t *testing.T) {
	opts := DefaultOptions()
	opts.ShowRejected = true

	got := GenerateMermaid(feedReport(), opts)

	assert.True(t, strings.HasPrefix(got, "classDiagram\n"))
	assert.Contains(t, got, "    feed_FeedDog ..> feed_AnimalFeeder : rejected")
	assert.Contains(t, got, "    feed_FeedAnimal ..> feed_DogFeeder : adaptable")
}

func TestGenerateMermaidDeterministic(t *testing.T) {
	r := feedReport()
	r.Capabilities = append(r.Capabilities, checker.Capability{Name: "Zebra", PkgName: "feed"})
	first := GenerateMermaid(r, DefaultOptions())

	r.Bindings[0], r.Bindings[3] = r.Bindings[3], r.Bindings[0]
	r.Capabilities = []checker.Capability{r.Capabilities[1], r.Capabilities[0]}

	assert.Equal(t, first, GenerateMermaid(r, DefaultOptions()))
}

func TestGenerateMermaidEmpty(t *testing.T) {
	assert.Equal(t, "classDiagram", GenerateMermaid(&checker.Report{}, DefaultOptions()))
}

func TestMaxMethodsPerBox(t *testing.T) {
	r := &checker.Report{Capabilities: []checker.Capability{{
		Name: "Big", PkgName: "p",
		Methods: []checker.MethodSig{
			{Signature: "A()"}, {Signature: "B()"}, {Signature: "C()"},
		},
	}}}

	got := GenerateMermaid(r, Options{MaxMethodsPerBox: 2})
	assert.Contains(t, got, "+A()\n        +B()\n        ...\n")
	assert.NotContains(t, got, "+C()")

	got = GenerateMermaid(r, Options{})
	assert.Contains(t, got, "+C()")
}

func TestSanitizeSignature(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Recv() <-chan int", "Recv() chan int"},
		{"Handle(interface{})", "Handle(any)"},
		{"Set(map[string]struct{})", "Set(map[string]struct)"},
		{"FeedDog(*feed.Dog)", "FeedDog(*feed.Dog)"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeSignature(tt.in))
		})
	}
}
