package utils

import "testing"

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"clean", "Notes.pdf", "Notes.pdf"},
		{"slashes", "Teoria/Prática", "Teoria_Prática"},
		{"windows illegal", `a\b:c*d?e"f<g>h|i`, "a_b_c_d_e_f_g_h_i"},
		{"whitespace runs", "Aula   1 \t prova", "Aula 1 prova"},
		{"leading trailing space", "  General  ", "General"},
		{"empty", "", "unnamed"},
		{"only illegal", "???", "___"},
		{"only spaces", "   ", "unnamed"},
		{"accents preserved", "Cálculo Avançado", "Cálculo Avançado"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeName(tt.input); got != tt.want {
				t.Errorf("SanitizeName(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestJoinKey(t *testing.T) {
	tests := []struct {
		name     string
		segments []string
		want     string
	}{
		{"simple", []string{"backup_teams", "Cálculo I", "General"}, "backup_teams/Cálculo I/General"},
		{"skips empty", []string{"prefix", "", "file.txt"}, "prefix/file.txt"},
		{"sanitizes each", []string{"a/b", "c:d"}, "a_b/c_d"},
		{"none", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := JoinKey(tt.segments...); got != tt.want {
				t.Errorf("JoinKey(%v) = %q, want %q", tt.segments, got, tt.want)
			}
		})
	}
}

func TestAppendKey(t *testing.T) {
	if got := AppendKey("backup_teams/Team/General", "Week 1"); got != "backup_teams/Team/General/Week 1" {
		t.Errorf("prefix separators must survive, got %q", got)
	}
	if got := AppendKey("", "file.txt"); got != "file.txt" {
		t.Errorf("empty dir handling, got %q", got)
	}
	if got := AppendKey("dir", "a/b"); got != "dir/a_b" {
		t.Errorf("segment must be sanitized, got %q", got)
	}
}

func TestFileExtension(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Notes.PDF", "pdf"},
		{"archive.tar.gz", "gz"},
		{"Makefile", "bin"},
		{"trailing.", "bin"},
		{".hidden", "hidden"},
	}
	for _, tt := range tests {
		if got := FileExtension(tt.input); got != tt.want {
			t.Errorf("FileExtension(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
