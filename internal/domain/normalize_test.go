package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		expected string
	}{
		{"accents and trailing space", "Bogotá  D.C. ", "BOGOTA D.C."},
		{"already canonical", "BOGOTA D.C.", "BOGOTA D.C."},
		{"lowercase with tilde", "nariño", "NARINO"},
		{"interior whitespace run", "VALLE   DEL  CAUCA", "VALLE DEL CAUCA"},
		{"tabs and newlines", "SAN\tANDRES\n", "SAN ANDRES"},
		{"empty is missing", "", ""},
		{"only whitespace", "   ", ""},
		{"mixed case accents", "Chocó", "CHOCO"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Normalize(tt.in))
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{"Bogotá  D.C. ", "nariño", "VALLE   DEL  CAUCA", "Río  Sucio", "Quindío"}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "normalize(normalize(%q))", in)
	}
}
