package connector

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/kl200/pkg/l1"
	"github.com/robotalks/kl200/pkg/l1/comm/mqtt"
	"github.com/robotalks/kl200/pkg/l1/comm/websocket"
)

func TestNewConnector(t *testing.T) {
	testCases := []struct {
		url    string
		expect l1.Connector
	}{
		{"mqtt://localhost:1883/robo/", &mqtt.Connector{}},
		{"ws://localhost:8200/l1", &websocket.Connector{}},
		{"wss://localhost:8200", &websocket.Connector{}},
		{"http://localhost", nil},
		{"%%", nil},
	}

	for _, tc := range testCases {
		t.Run(tc.url, func(t *testing.T) {
			conf := NewConfig()
			conf.RegistryURL = tc.url
			connector, err := conf.NewConnector()
			if tc.expect == nil {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.IsType(t, tc.expect, connector)
		})
	}
}

func TestConnectRequiresRef(t *testing.T) {
	conf := NewConfig()
	conf.Ref = l1.ControllerRef{Type: "kl200"}
	_, err := conf.Connect(context.Background())
	require.Error(t, err)
}
