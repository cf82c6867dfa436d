package fingerprint

import (
	"strings"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		code string
		want string
	}{
		{
			name: "spaces around operators collapse",
			code: "x = 1",
			want: "x=1",
		},
		{
			name: "hash comment stripped",
			code: "x=1  # note",
			want: "x=1",
		},
		{
			name: "slash comment stripped",
			code: "x=1 // note",
			want: "x=1",
		},
		{
			name: "blank lines dropped",
			code: "\n\nx=1\n\n\ny=2\n\n",
			want: "x=1\ny=2",
		},
		{
			name: "runs of whitespace collapse",
			code: "def   foo (a,  b):",
			want: "def foo(a,b):",
		},
		{
			name: "comment-only line removed entirely",
			code: "# just a comment\nx=1",
			want: "x=1",
		},
		{
			name: "hash inside string is a known blind spot",
			code: `s = "color: #fff"`,
			want: `s="color:`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.code); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.code, got, tt.want)
			}
		})
	}
}

func TestFingerprint_StableUnderReformatting(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
	}{
		{"whitespace only", "x = 1", "x=1"},
		{"trailing comment", "x=1  # note", "x=1"},
		{"surrounding blank lines", "\n\nx=1\n\n", "x=1"},
		{"indent noise", "def f():\n    return  1", "def f():\n return 1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fa, fb := Fingerprint(tt.a), Fingerprint(tt.b)
			if fa != fb {
				t.Errorf("Fingerprint(%q) = %s, Fingerprint(%q) = %s, want equal", tt.a, fa, tt.b, fb)
			}
		})
	}
}

func TestFingerprint_DistinctCode(t *testing.T) {
	if Fingerprint("x=1") == Fingerprint("x=2") {
		t.Error("different code produced identical fingerprints")
	}
}

func TestFingerprint_Deterministic(t *testing.T) {
	code := "def handler(req):\n    return req.body  # echo"
	first := Fingerprint(code)
	for i := 0; i < 10; i++ {
		if got := Fingerprint(code); got != first {
			t.Fatalf("Fingerprint not deterministic: %s != %s", got, first)
		}
	}
	if len(first) != 64 || strings.ToLower(first) != first {
		t.Errorf("Fingerprint %q is not lowercase sha256 hex", first)
	}
}

// Канонизация не понимает строковые литералы: # в строке режется как
// комментарий, и разные литералы после # дают одинаковый хеш.
func TestFingerprint_StringLiteralBlindSpot(t *testing.T) {
	a := `s = "color: #fff"`
	b := `s = "color: #000"`
	if Fingerprint(a) != Fingerprint(b) {
		t.Error("expected blind-spot collision for differing text after # inside a string")
	}
}
