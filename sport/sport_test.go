package sport

import (
	"bytes"
	"testing"

	"go.jacobcolvin.com/jsonmin/eco"
)

var sportScenarios = []string{
	`{ "name" : "John" , "age" : 30 }`,
	`[ 1 , 2 , 3 , "hello world" , null , true , false ]`,
	`{"s":"a\nb","u":"é"}`,
	`{"nested":{"deep":[{"k":"v"}]}}`,
	`1.5e+10`,
	`-0.25`,
	`"a string containing a literal backslash-quote \" and unicode é and   spaces"`,
}

func TestMinifyAgreesWithECO(t *testing.T) {
	for _, in := range sportScenarios {
		want, err := eco.Minify([]byte(in))
		if err != nil {
			t.Fatalf("eco.Minify(%q): %v", in, err)
		}
		got, err := Minify([]byte(in))
		if err != nil {
			t.Fatalf("sport.Minify(%q): %v", in, err)
		}
		if !bytes.Equal(got, want) {
			t.Errorf("sport.Minify(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestMinifyToWriter(t *testing.T) {
	var out bytes.Buffer
	if err := MinifyToWriter([]byte(`{ "a" : 1 }`), &out, false); err != nil {
		t.Fatal(err)
	}
	if got, want := out.String(), `{"a":1}`; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestStrictRejectsWhatECORejects(t *testing.T) {
	invalid := []string{`{"a":}`, `01`, `"unterminated`, `{"a": "\q"}`}
	for _, in := range invalid {
		_, ecoErr := eco.Minify([]byte(in))
		_, sportErr := Minify([]byte(in))
		if (ecoErr == nil) != (sportErr == nil) {
			t.Errorf("%q: eco err=%v, strict sport err=%v", in, ecoErr, sportErr)
		}
	}
}

func TestLenientAcceptsTrailingComma(t *testing.T) {
	got, err := MinifyLenient([]byte(`{"a":1,}`))
	if err != nil {
		t.Fatalf("MinifyLenient: %v", err)
	}
	if want := `{"a":1,}`; string(got) != want {
		t.Errorf("got %q, want %q", got, want)
	}
	if _, err := Minify([]byte(`{"a":1,}`)); err == nil {
		t.Error("strict Minify should reject trailing comma")
	}
}

func TestNoExpansion(t *testing.T) {
	for _, in := range sportScenarios {
		got, err := Minify([]byte(in))
		if err != nil {
			t.Fatal(err)
		}
		if len(got) > len(in) {
			t.Errorf("Minify(%q) expanded: %d > %d", in, len(got), len(in))
		}
	}
}

func TestMinifyToWriterWithDepthAppliesCustomLimit(t *testing.T) {
	in := []byte(`[[[[[1]]]]]`) // 5 levels deep
	var out bytes.Buffer
	if err := MinifyToWriterWithDepth(in, &out, false, 4); err == nil {
		t.Fatal("expected NestingTooDeep with depth limit 4")
	}

	out.Reset()
	if err := MinifyToWriterWithDepth(in, &out, false, 8); err != nil {
		t.Fatalf("depth limit 8 should accept 5 levels of nesting: %v", err)
	}
	if got, want := out.String(), `[[[[[1]]]]]`; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
