package config

// Environment variable names.
const (
	EnvHeadscaleURL    = "HEADSCALE_URL"
	EnvHeadscaleAPIKey = "HEADSCALE_API_KEY"
	EnvMullvadAccount  = "MULLVAD_ACCOUNT"
	EnvMullvadAPIURL   = "MULLVAD_API_URL"
	EnvMaxWorkers      = "HSMV_MAX_WORKERS"
	EnvPushgatewayURL  = "HSMV_PUSHGATEWAY_URL"
)

const (
	// DefaultEnvFile is read when no --env-file is given. A missing file is not an error.
	DefaultEnvFile = ".env"

	// DefaultMullvadAPIURL is the public Mullvad API.
	DefaultMullvadAPIURL = "https://api.mullvad.net"

	// DefaultMaxWorkers caps concurrent requests per batch.
	DefaultMaxWorkers = 50

	// WireGuardPort is the port every relay listens on.
	WireGuardPort = 51820
)

// AllowAllIPs are the allowed IP ranges of every relay peer.
var AllowAllIPs = []string{"0.0.0.0/0", "::/0"}
