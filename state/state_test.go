// Copyright (c) 2021 Tailscale Inc & AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package state

import (
	"bytes"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.jacobcolvin.com/jsonmin/jerr"
)

func minify(t *testing.T, in string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	m := New(&out)
	for i := 0; i < len(in); i++ {
		if err := m.Step(in[i]); err != nil {
			return out.String(), err
		}
	}
	if err := m.Flush(); err != nil {
		return out.String(), err
	}
	return out.String(), nil
}

var minifyTestdata = []struct {
	in      string
	want    string
	wantErr jerr.Kind
}{
	{in: `{ "name" : "John" , "age" : 30 }`, want: `{"name":"John","age":30}`},
	{in: `[ 1 , 2 , 3 , "hello world" , null , true , false ]`, want: `[1,2,3,"hello world",null,true,false]`},
	{in: `{"s":"a\nb","u":"é"}`, want: `{"s":"a\nb","u":"é"}`},
	{in: `{"nested":{"deep":[{"k":"v"}]}}`, want: `{"nested":{"deep":[{"k":"v"}]}}`},
	{in: ` {  "nested" :  { "deep" :  [ { "k" : "v" } ] }  } `, want: `{"nested":{"deep":[{"k":"v"}]}}`},
	{in: `1.5e+10`, want: `1.5e+10`},
	{in: `-0.25`, want: `-0.25`},
	{in: `0`, want: `0`},
	{in: `-0`, want: `-0`},
	{in: `0.0`, want: `0.0`},
	{in: `true`, want: `true`},
	{in: `false`, want: `false`},
	{in: `null`, want: `null`},
	{in: `""`, want: `""`},
	{in: `"  leading and trailing ws preserved  "`, want: `"  leading and trailing ws preserved  "`},
	{in: `[]`, want: `[]`},
	{in: `{}`, want: `{}`},
	{in: `{"a":}`, wantErr: jerr.KindInvalidJSON},
	{in: `{"a":1,}`, wantErr: jerr.KindInvalidJSON},
	{in: `[1,]`, wantErr: jerr.KindInvalidJSON},
	{in: `01`, wantErr: jerr.KindInvalidNumber},
	{in: `1.`, wantErr: jerr.KindUnexpectedEndOfInput},
	{in: `1e`, wantErr: jerr.KindUnexpectedEndOfInput},
	{in: `-`, wantErr: jerr.KindUnexpectedEndOfInput},
	{in: "\"a\x01b\"", wantErr: jerr.KindUnescapedControlCharacter},
	{in: `"\x"`, wantErr: jerr.KindInvalidEscapeSequence},
	{in: `"\u12"`, wantErr: jerr.KindInvalidUnicodeEscape},
	{in: `tru`, wantErr: jerr.KindUnexpectedEndOfInput},
	{in: `{`, wantErr: jerr.KindUnexpectedEndOfInput},
	{in: `[1,2`, wantErr: jerr.KindUnexpectedEndOfInput},
	{in: ``, wantErr: jerr.KindUnexpectedEndOfInput},
	{in: `1 2`, wantErr: jerr.KindInvalidJSON},
	{in: `truex`, wantErr: jerr.KindInvalidJSON},
}

func TestMinify(t *testing.T) {
	for _, tt := range minifyTestdata {
		got, err := minify(t, tt.in)
		if tt.wantErr != 0 {
			var me *jerr.MinifyError
			if !errors.As(err, &me) {
				t.Errorf("minify(%q): got err=%v, want Kind=%v", tt.in, err, tt.wantErr)
				continue
			}
			if me.Kind != tt.wantErr {
				t.Errorf("minify(%q): got Kind=%v, want %v", tt.in, me.Kind, tt.wantErr)
			}
			continue
		}
		if err != nil {
			t.Errorf("minify(%q): unexpected error: %v", tt.in, err)
			continue
		}
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("minify(%q) mismatch (-want +got):\n%s", tt.in, diff)
		}
	}
}

func TestMinifyIdempotent(t *testing.T) {
	for _, tt := range minifyTestdata {
		if tt.wantErr != 0 {
			continue
		}
		once, err := minify(t, tt.in)
		if err != nil {
			t.Fatalf("minify(%q): %v", tt.in, err)
		}
		twice, err := minify(t, once)
		if err != nil {
			t.Fatalf("minify(minify(%q)): %v", tt.in, err)
		}
		if once != twice {
			t.Errorf("not idempotent: minify(%q)=%q, minify(that)=%q", tt.in, once, twice)
		}
	}
}

func TestNestingTooDeep(t *testing.T) {
	var in bytes.Buffer
	for i := 0; i < 40; i++ {
		in.WriteByte('[')
	}
	var out bytes.Buffer
	m := New(&out)
	var stepErr error
	for _, b := range in.Bytes() {
		if stepErr = m.Step(b); stepErr != nil {
			break
		}
	}
	var me *jerr.MinifyError
	if !errors.As(stepErr, &me) || me.Kind != jerr.KindNestingTooDeep {
		t.Fatalf("got %v, want NestingTooDeep", stepErr)
	}
}

func TestErrorReportsLineAndColumn(t *testing.T) {
	in := "{\n  \"a\": 1,\n  \"b\": }\n}"
	var out bytes.Buffer
	m := New(&out)
	var stepErr error
	for i := 0; i < len(in); i++ {
		if stepErr = m.Step(in[i]); stepErr != nil {
			break
		}
	}
	var me *jerr.MinifyError
	if !errors.As(stepErr, &me) {
		t.Fatalf("got %v, want *jerr.MinifyError", stepErr)
	}
	if !me.HasPosition {
		t.Fatal("expected HasPosition = true")
	}
	if me.Line != 3 || me.Column != 8 {
		t.Errorf("got line %d column %d, want line 3 column 8", me.Line, me.Column)
	}
}

func TestErrorStateSticky(t *testing.T) {
	var out bytes.Buffer
	m := New(&out)
	if err := m.Step('}'); err == nil {
		t.Fatal("expected error on bare '}'")
	}
	if err := m.Step('1'); err == nil {
		t.Fatal("expected error-state to persist")
	}
}

func TestByteByByteFeedMatchesWholeInput(t *testing.T) {
	in := `{"nested":{"deep":[1,2,3,"strAing"]}}`
	whole, err := minify(t, in)
	if err != nil {
		t.Fatal(err)
	}

	// Feed one byte at a time, same machine instance, to prove
	// streaming incremental feed produces identical output to the
	// whole-string convenience wrapper above.
	var out bytes.Buffer
	m := New(&out)
	for i := 0; i < len(in); i++ {
		if err := m.Step(in[i]); err != nil {
			t.Fatalf("Step(%q) at %d: %v", in[i], i, err)
		}
	}
	if err := m.Flush(); err != nil {
		t.Fatal(err)
	}
	if out.String() != whole {
		t.Errorf("byte-by-byte = %q, want %q", out.String(), whole)
	}
}
