package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/discogs-alert/internal/config"
)

func TestNew(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		cfg      config.NotificationsConfig
		wantType Notifier
		wantErr  string
	}{
		{
			name:     "noop",
			cfg:      config.NotificationsConfig{Backend: config.BackendNoOp},
			wantType: &NoOpNotifier{},
		},
		{
			name:     "empty backend",
			cfg:      config.NotificationsConfig{},
			wantType: &NoOpNotifier{},
		},
		{
			name: "pushbullet",
			cfg: config.NotificationsConfig{
				Backend:    config.BackendPushbullet,
				Pushbullet: config.PushbulletConfig{Token: "tok", URL: "http://pb.local"},
			},
			wantType: &PushbulletNotifier{},
		},
		{
			name: "discord",
			cfg: config.NotificationsConfig{
				Backend: config.BackendDiscord,
				Discord: config.DiscordConfig{WebhookURL: "http://discord.local/hook"},
			},
			wantType: &DiscordNotifier{},
		},
		{
			name:    "unknown",
			cfg:     config.NotificationsConfig{Backend: "fax"},
			wantErr: `unknown notification backend "fax"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			n, err := New(&tt.cfg, nil, quietLogger())
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.wantType, n)
		})
	}
}

func TestNew_PushbulletURL(t *testing.T) {
	t.Parallel()

	n, err := New(&config.NotificationsConfig{
		Backend:    config.BackendPushbullet,
		Pushbullet: config.PushbulletConfig{Token: "tok", URL: "http://pb.local"},
	}, nil, quietLogger())
	require.NoError(t, err)

	pb, ok := n.(*PushbulletNotifier)
	require.True(t, ok)
	assert.Equal(t, "http://pb.local", pb.baseURL)
}
