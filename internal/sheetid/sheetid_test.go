package sheetid

import "testing"

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"https://docs.google.com/spreadsheets/d/1AbC_d-E2/edit#gid=0", "1AbC_d-E2", false},
		{"docs.google.com/spreadsheets/d/xyz123/", "xyz123", false},
		{"  1AbC_d-E2  ", "1AbC_d-E2", false},
		{"", "", true},
		{"https://example.com/not/a/sheet", "", true},
		{"has space", "", true},
	}
	for _, tt := range tests {
		got, err := Parse(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("Parse(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("Parse(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestColumn(t *testing.T) {
	if c, err := Column(" b "); err != nil || c != "B" {
		t.Errorf("Column(b) = %q, %v", c, err)
	}
	for _, bad := range []string{"", "AA", "1", "é"} {
		if _, err := Column(bad); err == nil {
			t.Errorf("Column(%q) should fail", bad)
		}
	}
}

func TestIndexLetter(t *testing.T) {
	if Index("A") != 1 || Index("Z") != 26 {
		t.Errorf("Index mismatch: A=%d Z=%d", Index("A"), Index("Z"))
	}
	if Letter(3) != "C" || Letter(0) != "" || Letter(27) != "" {
		t.Errorf("Letter mismatch")
	}
}

func TestValidateRow(t *testing.T) {
	if err := ValidateRow(1); err != nil {
		t.Error(err)
	}
	if err := ValidateRow(0); err == nil {
		t.Error("row 0 should be rejected")
	}
}
