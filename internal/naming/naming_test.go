package naming

import (
	"testing"

	"github.com/kylelemons/godebug/pretty"
)

func TestPlural(t *testing.T) {
	n := New(map[string]string{"Datum": "DataPoints"})

	cases := map[string]string{
		"User":    "Users",
		"Tag":     "Tags",
		"Address": "Addresses",
		"Person":  "People",
		"Datum":   "DataPoints",
	}
	for in, want := range cases {
		if got := n.Plural(in); got != want {
			t.Errorf("Plural(%q) = %q, want %q", in, got, want)
		}
	}

	var zero *Namer
	if got := zero.Plural("Post"); got != "Posts" {
		t.Errorf("nil Namer Plural = %q", got)
	}
}

func TestCase(t *testing.T) {
	got := []string{
		LowerCamel("Users"),
		LowerCamel("BlogPost"),
		Camel("createdAt"),
		Camel("tags"),
	}
	want := []string{"users", "blogPost", "CreatedAt", "Tags"}
	if diff := pretty.Compare(got, want); diff != "" {
		t.Errorf("unexpected names (-got +want):\n%s", diff)
	}
}
