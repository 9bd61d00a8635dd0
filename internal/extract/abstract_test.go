// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLocateAbstract(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{
			"cut at introduction",
			"Title page\nABSTRACT this is the abstract text INTRODUCTION rest of paper",
			"this is the abstract text",
		},
		{
			"whitespace collapsed",
			"Abstract\n\n  We   present\ta method.\n\n1 Introduction\nBody",
			"We present a method.",
		},
		{
			"colon after heading",
			"Abstract: Short and sweet. Keywords: go, pdf",
			"Short and sweet.",
		},
		{
			"earliest marker wins",
			"Abstract We cover keywords first. 1. Introduction",
			"We cover",
		},
		{
			"roman numeral section",
			"ABSTRACT\nWe study graphs.\nI. INTRODUCTION\nGraphs are everywhere.",
			"We study graphs.",
		},
		{
			"no marker runs to end",
			"Abstract   Everything after the heading is kept",
			"Everything after the heading is kept",
		},
		{
			"abstract token mid-word",
			"Nonabstract art. And more.",
			"art. And more.",
		},
		{
			"heading only",
			"Abstract\n\nIntroduction",
			"",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, LocateAbstract(tt.text))
		})
	}
}

func TestLocateAbstractFallback(t *testing.T) {
	words := make([]string, 700)
	for i := range words {
		words[i] = fmt.Sprintf("w%d", i)
	}
	text := strings.Join(words, "\n  ")

	got := LocateAbstract(text)
	assert.Equal(t, strings.Join(words[:500], " "), got)
}

func TestLocateAbstractShortFallback(t *testing.T) {
	assert.Equal(t, "just a few words", LocateAbstract("  just a\nfew   words "))
	assert.Equal(t, "", LocateAbstract("   \n\t"))
}

func TestLocateAbstractNonASCII(t *testing.T) {
	// Multi-byte runes before the heading must not shift the cut offsets.
	text := "Über Ärger — ABSTRACT Größere Modelle helfen. INTRODUCTION mehr"
	assert.Equal(t, "Größere Modelle helfen.", LocateAbstract(text))
}
