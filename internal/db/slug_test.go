package db

import "testing"

func TestSlugify(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "simple", input: "Hola Mundo", want: "hola-mundo"},
		{name: "accents", input: "Canción Ñandú", want: "cancion-nandu"},
		{name: "punctuation", input: "¿Qué es Go? ¡Todo!", want: "que-es-go-todo"},
		{name: "collapse separators", input: "  uno -- dos\t tres ", want: "uno-dos-tres"},
		{name: "drop dots", input: "v1.2 lanzado", want: "v12-lanzado"},
		{name: "underscores kept", input: "mi_variable", want: "mi_variable"},
		{name: "trim underscores", input: "_privado_", want: "privado"},
		{name: "non latin dropped", input: "日本 go", want: "go"},
		{name: "empty", input: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Slugify(tt.input); got != tt.want {
				t.Fatalf("Slugify(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
