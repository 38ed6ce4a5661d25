package agent

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func mustDoc(t *testing.T, s string) Document {
	t.Helper()
	var d Document
	if err := json.Unmarshal([]byte(s), &d); err != nil {
		t.Fatalf("unmarshal %q: %v", s, err)
	}
	return d
}

func TestDocument_String(t *testing.T) {
	d := mustDoc(t, `{"s":"e4","blank":"  ","n":1.5,"b":true,"null":null,"obj":{}}`)

	tests := []struct {
		key  string
		want string
	}{
		{"s", "e4"},
		{"blank", "dflt"},
		{"n", "1.5"},
		{"b", "true"},
		{"null", "dflt"},
		{"obj", "dflt"},
		{"missing", "dflt"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			if got := d.String(tt.key, "dflt"); got != tt.want {
				t.Errorf("String(%q) = %q; want %q", tt.key, got, tt.want)
			}
		})
	}
}

func TestDocument_First(t *testing.T) {
	d := Document{"reply": "", "message": "hello"}
	if got := d.First("none", "reply", "message", "text"); got != "hello" {
		t.Errorf("First = %q; want %q", got, "hello")
	}
	if got := d.First("none", "text"); got != "none" {
		t.Errorf("First = %q; want %q", got, "none")
	}
}

func TestDocument_Numbers(t *testing.T) {
	d := mustDoc(t, `{"i":3,"f":0.75,"s":" 1200 ","bad":"high","neg":-2.9}`)

	if got := d.Int("i", -1); got != 3 {
		t.Errorf("Int(i) = %d; want 3", got)
	}
	if got := d.Int("s", -1); got != 1200 {
		t.Errorf("Int(s) = %d; want 1200", got)
	}
	if got := d.Int("neg", 0); got != -2 {
		t.Errorf("Int(neg) = %d; want -2", got)
	}
	if got := d.Int("bad", 1500); got != 1500 {
		t.Errorf("Int(bad) = %d; want default 1500", got)
	}
	if got := d.Float("f", 0); got != 0.75 {
		t.Errorf("Float(f) = %v; want 0.75", got)
	}
	if got := d.Float("missing", 0.5); got != 0.5 {
		t.Errorf("Float(missing) = %v; want 0.5", got)
	}
}

func TestDocument_IntOutOfRange(t *testing.T) {
	d := mustDoc(t, `{"huge":1e300,"tiny":-1e300,"edge":9223372036854775807,"str":"1e19"}`)

	for _, key := range []string{"huge", "tiny", "edge", "str"} {
		if got := d.Int(key, 1500); got != 1500 {
			t.Errorf("Int(%s) = %d; want default 1500", key, got)
		}
	}
}

func TestDocument_Bool(t *testing.T) {
	d := mustDoc(t, `{"t":true,"yes":"Yes","no":"no","one":1,"zero":0,"two":2,"junk":"maybe"}`)

	tests := []struct {
		key  string
		def  bool
		want bool
	}{
		{"t", false, true},
		{"yes", false, true},
		{"no", true, false},
		{"one", false, true},
		{"zero", true, false},
		{"two", true, true},
		{"junk", false, false},
		{"missing", true, true},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			if got := d.Bool(tt.key, tt.def); got != tt.want {
				t.Errorf("Bool(%q) = %v; want %v", tt.key, got, tt.want)
			}
		})
	}
}

func TestDocument_Strings(t *testing.T) {
	d := mustDoc(t, `{"arr":["Nf3", 7, null, "", {"x":1}, "O-O"],"text":"first\n\n  second \n"}`)

	if diff := cmp.Diff([]string{"Nf3", "7", "O-O"}, d.Strings("arr")); diff != "" {
		t.Errorf("Strings(arr) mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"first", "second"}, d.Strings("text")); diff != "" {
		t.Errorf("Strings(text) mismatch (-want +got):\n%s", diff)
	}
	if got := d.Strings("missing"); got != nil {
		t.Errorf("Strings(missing) = %v; want nil", got)
	}
}

func TestDocument_Documents(t *testing.T) {
	d := mustDoc(t, `{"list":[{"move":"e4"},"skip",{"move":"e5"}],"one":{"move":"d4"}}`)

	list := d.Documents("list")
	if len(list) != 2 {
		t.Fatalf("len(Documents(list)) = %d; want 2", len(list))
	}
	if got := list[1].String("move", ""); got != "e5" {
		t.Errorf("list[1].move = %q; want e5", got)
	}

	one := d.Documents("one")
	if len(one) != 1 || one[0].String("move", "") != "d4" {
		t.Errorf("Documents(one) = %v; want single d4 object", one)
	}

	if got := d.Object("one").String("move", ""); got != "d4" {
		t.Errorf("Object(one).move = %q; want d4", got)
	}
	if got := d.Object("list"); len(got) != 0 {
		t.Errorf("Object(list) = %v; want empty", got)
	}
}
