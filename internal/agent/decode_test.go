package agent

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/lgbarn/chess-trainer-go/internal/errors"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name string
		body string
		want Document
	}{
		{
			name: "plain object",
			body: `{"summary":"equal","best_move":"Nf3"}`,
			want: Document{"summary": "equal", "best_move": "Nf3"},
		},
		{
			name: "response envelope",
			body: `{"response":"{\"reply\":\"d5\"}"}`,
			want: Document{"reply": "d5"},
		},
		{
			name: "fenced envelope",
			body: "{\"output\":\"```json\\n{\\\"reply\\\":\\\"c5\\\"}\\n```\"}",
			want: Document{"reply": "c5"},
		},
		{
			name: "envelope without json stays",
			body: `{"text":"Develop your knights."}`,
			want: Document{"text": "Develop your knights."},
		},
		{
			name: "envelope beside other fields stays",
			body: `{"text":"{\"a\":1}","id":"x"}`,
			want: Document{"text": `{"a":1}`, "id": "x"},
		},
		{
			name: "json string holding object",
			body: `"{\"move\":\"e4\"}"`,
			want: Document{"move": "e4"},
		},
		{
			name: "bare json string",
			body: `"Good move!"`,
			want: Document{"text": "Good move!"},
		},
		{
			name: "raw text with fenced object",
			body: "Here you go:\n```json\n{\"theme\":\"fork\"}\n```",
			want: Document{"theme": "fork"},
		},
		{
			name: "raw prose",
			body: "The position is balanced.",
			want: Document{"text": "The position is balanced."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode([]byte(tt.body))
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Decode() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDecode_Malformed(t *testing.T) {
	for _, body := range []string{"", "   ", "[1,2]", "42", `""`} {
		t.Run(body, func(t *testing.T) {
			_, err := Decode([]byte(body))
			if !errors.Is(err, errors.ErrMalformedResponse) {
				t.Errorf("Decode(%q) error = %v; want ErrMalformedResponse", body, err)
			}
		})
	}
}
