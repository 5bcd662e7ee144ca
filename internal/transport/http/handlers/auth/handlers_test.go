package authhandler

import (
	"testing"
)

func TestValidateResetPassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{
			name:     "valid password",
			password: "Stronger123",
		},
		{
			name:     "too short",
			password: "S1hort",
			wantErr:  true,
		},
		{
			name:     "missing uppercase",
			password: "longpassword1",
			wantErr:  true,
		},
		{
			name:     "missing lowercase",
			password: "LONGPASSWORD1",
			wantErr:  true,
		},
		{
			name:     "missing number",
			password: "LongPassword",
			wantErr:  true,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			err := validateResetPassword(tc.password)
			if tc.wantErr && err == nil {
				t.Fatal("expected validation error")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected validation error: %v", err)
			}
		})
	}
}
