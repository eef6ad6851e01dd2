package genai

import "testing"

func TestExtractJSONObject(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "bare object",
			text: `{"a": 1}`,
			want: `{"a": 1}`,
		},
		{
			name: "object wrapped in prose",
			text: "Sure! Here is the result:\n{\"a\": 1}\nLet me know if you need more.",
			want: `{"a": 1}`,
		},
		{
			name: "markdown fence",
			text: "```json\n{\"a\": 1}\n```",
			want: `{"a": 1}`,
		},
		{
			name: "nested objects",
			text: `{"outer": {"inner": {"deep": true}}}`,
			want: `{"outer": {"inner": {"deep": true}}}`,
		},
		{
			name: "brace inside string literal",
			text: `{"msg": "use {curly} braces"}`,
			want: `{"msg": "use {curly} braces"}`,
		},
		{
			name: "escaped quote inside string",
			text: `{"msg": "she said \"hi\" to me"}`,
			want: `{"msg": "she said \"hi\" to me"}`,
		},
		{
			name: "unbalanced object",
			text: `{"a": {"b": 1}`,
			want: "",
		},
		{
			name: "no object",
			text: "no json here",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractJSONObject(tt.text); got != tt.want {
				t.Errorf("ExtractJSONObject(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestExtractJSONArray(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "bare array",
			text: `[1, 2, 3]`,
			want: `[1, 2, 3]`,
		},
		{
			name: "array of objects in prose",
			text: `The starters are: [{"s": "hi"}, {"s": "hello"}] - enjoy!`,
			want: `[{"s": "hi"}, {"s": "hello"}]`,
		},
		{
			name: "bracket inside string literal",
			text: `["a [weird] item", "b"]`,
			want: `["a [weird] item", "b"]`,
		},
		{
			name: "no array",
			text: `{"a": 1}`,
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractJSONArray(tt.text); got != tt.want {
				t.Errorf("ExtractJSONArray(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}
