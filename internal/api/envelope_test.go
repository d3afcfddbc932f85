// Copyright (c) 2024-2025 Maner Fan / Modu
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"encoding/json"
	"testing"
)

func TestErrorContent_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want ErrorContent
	}{
		{
			name: "full content",
			raw:  `{"code":"E1","message":"boom","showType":1,"target":"/x"}`,
			want: ErrorContent{Code: "E1", Message: "boom", ShowType: ShowWarnMessage, Target: "/x"},
		},
		{
			name: "absent show type defaults to error message",
			raw:  `{"code":"E2","message":"boom"}`,
			want: ErrorContent{Code: "E2", Message: "boom", ShowType: ShowErrorMessage},
		},
		{
			name: "explicit zero stays silent",
			raw:  `{"message":"quiet","showType":0}`,
			want: ErrorContent{Message: "quiet", ShowType: ShowSilent},
		},
		{
			name: "redirect",
			raw:  `{"message":"moved","showType":9,"target":"/upgrade"}`,
			want: ErrorContent{Message: "moved", ShowType: ShowRedirect, Target: "/upgrade"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got ErrorContent
			if err := json.Unmarshal([]byte(tt.raw), &got); err != nil {
				t.Fatalf("Unmarshal() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestErrorShowType_String(t *testing.T) {
	tests := []struct {
		t    ErrorShowType
		want string
	}{
		{ShowSilent, "SILENT"},
		{ShowWarnMessage, "WARN_MESSAGE"},
		{ShowErrorMessage, "ERROR_MESSAGE"},
		{ShowNotification, "NOTIFICATION"},
		{ShowRedirect, "REDIRECT"},
		{ErrorShowType(42), "UNKNOWN"},
	}
	for _, tt := range tests {
		if got := tt.t.String(); got != tt.want {
			t.Errorf("%d.String() = %q, want %q", int(tt.t), got, tt.want)
		}
	}
}

func TestEnvelope_Decode(t *testing.T) {
	raw := []byte(`{"success":true,"code":"0","content":{"name":"modu"}}`)

	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if !env.Success || env.Code != "0" {
		t.Errorf("envelope = %+v", env)
	}

	var content struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(env.Content, &content); err != nil {
		t.Fatalf("content decode error = %v", err)
	}
	if content.Name != "modu" {
		t.Errorf("content.Name = %q", content.Name)
	}
}
