package database

import (
	"net"
	"net/url"
	"strconv"

	"github.com/arzlive/arzlive/internal/config"
)

// ApplicationName is reported to the server in pg_stat_activity.
const ApplicationName = "arzlive"

// BuildConnString builds a PostgreSQL URL from config. Credentials are
// escaped; an empty user leaves the userinfo out so libpq-style defaults
// (PGUSER, .pgpass) apply.
func BuildConnString(cfg config.DBConfig) string {
	port := cfg.Port
	if port == 0 {
		port = config.DefaultDBPort
	}
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = config.DefaultDBSSLMode
	}

	u := url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(cfg.Host, strconv.Itoa(port)),
		Path:   "/" + cfg.Name,
		RawQuery: url.Values{
			"sslmode":          {sslMode},
			"application_name": {ApplicationName},
		}.Encode(),
	}
	if cfg.User != "" {
		u.User = url.UserPassword(cfg.User, cfg.Password)
	}
	return u.String()
}
