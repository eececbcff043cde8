package normalize

import "testing"

func TestText_Table(t *testing.T) {
	tests := []struct {
		name string
		in   string
		out  string
	}{
		{name: "identity keeps case", in: "Blue Shirt XL", out: "Blue Shirt XL"},
		{name: "utf8 repair drops invalid bytes", in: string([]byte{0xff, 'T', 'e', 'e', 0x80, ' ', 'x'}), out: "Tee x"},
		{name: "compose combining marks", in: "cafe\u0301 cup", out: "caf\u00e9 cup"},
		{name: "remove zero widths", in: "Sh\u200Bir\uFEFFt", out: "Shirt"},
		{name: "width fold fullwidth", in: "\uFF34\uFF36 55", out: "TV 55"},
		{name: "collapse whitespace and newlines", in: "  a\t\tb\nc   d \r\n", out: "a b c d"},
		{name: "controls stripped", in: "Lamp\x00\x07 white", out: "Lamp white"},
		{name: "empty", in: "", out: ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Text(tc.in)
			if got != tc.out {
				t.Fatalf("Text(%q) = %q, want %q", tc.in, got, tc.out)
			}
			if again := Text(got); again != got {
				t.Fatalf("Text not idempotent: %q -> %q", got, again)
			}
		})
	}
}

func TestKey(t *testing.T) {
	tests := map[string]string{
		" Product-Name ": "product_name",
		"\uFF29\uFF24":   "id",
		"image.url":      "image_url",
		"PRICE":          "price",
		"  ":             "",
	}
	for in, want := range tests {
		if got := Key(in); got != want {
			t.Fatalf("Key(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestDecimal(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"12,99", "12.99", true},
		{"1.299,00", "1299", true},
		{"1,299.50", "1299.5", true},
		{" 7 ", "7", true},
		{"0", "0", true},
		{"1,2,3", "", false},
		{"abc", "", false},
		{"", "", false},
	}
	for _, tc := range tests {
		got, ok := Decimal(tc.in)
		if got != tc.want || ok != tc.ok {
			t.Fatalf("Decimal(%q) = %q,%v want %q,%v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}
