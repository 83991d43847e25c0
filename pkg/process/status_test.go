package process

import (
	"syscall"
	"testing"
)

func TestFromWaitStatus(t *testing.T) {
	tests := []struct {
		name      string
		ws        syscall.WaitStatus
		want      ExitStatus
		shellCode int
		success   bool
	}{
		{
			name:      "clean exit",
			ws:        ExitedStatus(0),
			want:      ExitStatus{},
			shellCode: 0,
			success:   true,
		},
		{
			name:      "exit code",
			ws:        ExitedStatus(42),
			want:      ExitStatus{Code: 42},
			shellCode: 42,
		},
		{
			name:      "terminated",
			ws:        SignaledStatus(syscall.SIGTERM),
			want:      ExitStatus{Signaled: true, Signal: syscall.SIGTERM},
			shellCode: 143,
		},
		{
			name:      "killed",
			ws:        SignaledStatus(syscall.SIGKILL),
			want:      ExitStatus{Signaled: true, Signal: syscall.SIGKILL},
			shellCode: 137,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromWaitStatus(tt.ws)
			if got != tt.want {
				t.Errorf("FromWaitStatus() = %+v, want %+v", got, tt.want)
			}
			if got.ShellCode() != tt.shellCode {
				t.Errorf("ShellCode() = %d, want %d", got.ShellCode(), tt.shellCode)
			}
			if got.Success() != tt.success {
				t.Errorf("Success() = %v, want %v", got.Success(), tt.success)
			}
		})
	}
}
