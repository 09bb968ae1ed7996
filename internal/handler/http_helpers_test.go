package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bitacora/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

func TestSafeNext(t *testing.T) {
	cases := map[string]string{
		"":                      "",
		"/articulo/hola/":       "/articulo/hola/",
		"/admin/?q=1":           "/admin/?q=1",
		"//evil.example/":       "",
		"/\\evil.example":       "",
		"https://evil.example/": "",
		"javascript:alert(1)":   "",
		"  /autor/ana/  ":       "/autor/ana/",
	}
	for input, expected := range cases {
		if got := safeNext(input); got != expected {
			t.Fatalf("safeNext(%q) = %q, want %q", input, got, expected)
		}
	}
}

func TestPageNumber(t *testing.T) {
	cases := []struct {
		query string
		page  int
		ok    bool
	}{
		{"", 1, true},
		{"?page=3", 3, true},
		{"?page=0", 0, false},
		{"?page=-1", 0, false},
		{"?page=uno", 0, false},
		{"?page=", 0, false},
	}
	for _, tc := range cases {
		recorder := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(recorder)
		c.Request = httptest.NewRequest(http.MethodGet, "/"+tc.query, nil)

		page, ok := pageNumber(c)
		if page != tc.page || ok != tc.ok {
			t.Fatalf("%q: got (%d, %v), want (%d, %v)", tc.query, page, ok, tc.page, tc.ok)
		}
	}
}

func TestParseUintHelpers(t *testing.T) {
	ids := parseUintSlice([]string{"1", " 2 ", "", "x", "3"})
	if len(ids) != 3 || ids[0] != 1 || ids[1] != 2 || ids[2] != 3 {
		t.Fatalf("unexpected ids %v", ids)
	}
	if parseOptionalUint("") != nil || parseOptionalUint("0") != nil || parseOptionalUint("abc") != nil {
		t.Fatalf("invalid values should be nil")
	}
	if id := parseOptionalUint("7"); id == nil || *id != 7 {
		t.Fatalf("expected 7")
	}
}

type formErrorsSample struct {
	Title    string `form:"titulo" binding:"required,max=5"`
	Email    string `json:"correo" binding:"required,email"`
	Password string `form:"password1" binding:"required"`
	Confirm  string `form:"password2" binding:"required,eqfield=Password"`
}

func TestFormErrorsUsesFieldKeysAndSpanishMessages(t *testing.T) {
	registerFormFieldNames()

	err := binding.Validator.ValidateStruct(&formErrorsSample{
		Title:    "demasiado largo",
		Email:    "no-es-correo",
		Password: "uno",
		Confirm:  "dos",
	})
	errs, ok := formErrors(err)
	if !ok {
		t.Fatalf("expected validation errors, got %v", err)
	}

	expected := map[string]string{
		"titulo":    service.MaxLengthMessage(5),
		"correo":    "Introduzca una dirección de correo electrónico válida.",
		"password2": "Los dos campos de contraseña no coinciden.",
	}
	for field, message := range expected {
		if errs[field] != message {
			t.Fatalf("%s: got %q, want %q", field, errs[field], message)
		}
	}

	err = binding.Validator.ValidateStruct(&formErrorsSample{})
	errs, _ = formErrors(err)
	if errs["titulo"] != service.RequiredMessage {
		t.Fatalf("expected required message, got %q", errs["titulo"])
	}
}

func TestFormErrorsPassesServiceErrorsThrough(t *testing.T) {
	source := service.ValidationErrors{"nombre": "Ya existe Categoría con este Nombre."}
	errs, ok := formErrors(source)
	if !ok || errs["nombre"] != source["nombre"] {
		t.Fatalf("service validation errors should pass through")
	}

	if _, ok := formErrors(http.ErrBodyNotAllowed); ok {
		t.Fatalf("unrelated errors are not validation errors")
	}
}
