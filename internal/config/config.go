package config // package config loads application configuration from environment variables

import (
    "log"      // log is used to report configuration errors and halt execution
    "os"       // os provides access to environment variables
    "strconv"  // strconv converts strings to other types
    "strings"  // strings joins the names of missing variables for the fatal message
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  The types reflect how the values are used in
// the application: strings for identifiers and secrets, ints for durations.
type Config struct {
    Env            string // application environment (e.g. "dev", "prod")
    Port           string // HTTP port to listen on
    DBUser         string // database username
    DBPass         string // database password (optional)
    DBHost         string // database host address
    DBPort         string // database port number
    DBName         string // database name
    JWTSecret      string // secret used to sign JWTs
    AccessTTLMin   int    // access token time‑to‑live in minutes
    RefreshTTLDays int    // refresh token time‑to‑live in days
    IDPClientID    string // identity provider application (client) id
    IDPTenantID    string // identity provider tenant id
    IDPBaseURL     string // identity provider REST base URL (overridable for tests)
    EmailConnStr   string // email service connection string (optional, empty disables email)
    EmailSender    string // sender address used for outgoing mail
    StorageDir     string // directory where uploaded documents are stored
    PublicBaseURL  string // base URL used to build public document links
}

// Load reads configuration values from environment variables and returns a
// Config.  Every required variable that is missing is collected first and
// the program exits with one fatal message enumerating all of them, so an
// operator can fix the environment in a single pass instead of discovering
// the gaps one restart at a time.
func Load() Config {
    var missing []string
    must := func(key string) string {
        v, ok := os.LookupEnv(key)
        if !ok || v == "" {
            missing = append(missing, key)
        }
        return v
    }
    mustInt := func(key string) int {
        s := must(key)
        if s == "" {
            return 0
        }
        n, err := strconv.Atoi(s)
        if err != nil {
            log.Fatalf("invalid int for %s: %q", key, s)
        }
        return n
    }

    cfg := Config{
        Env:            must("APP_ENV"),             // environment (dev/test/prod)
        Port:           must("APP_PORT"),            // port to bind the HTTP server
        DBUser:         must("DB_USER"),             // database user
        DBPass:         os.Getenv("DB_PASS"),        // database password (empty allowed)
        DBHost:         must("DB_HOST"),             // database host
        DBPort:         must("DB_PORT"),             // database port
        DBName:         must("DB_NAME"),             // database name
        JWTSecret:      must("JWT_SECRET"),          // secret used for signing JWTs
        AccessTTLMin:   mustInt("ACCESS_TOKEN_TTL_MIN"),   // TTL for access tokens in minutes
        RefreshTTLDays: mustInt("REFRESH_TOKEN_TTL_DAYS"), // TTL for refresh tokens in days
        IDPClientID:    must("IDP_CLIENT_ID"),       // identity provider client id
        IDPTenantID:    must("IDP_TENANT_ID"),       // identity provider tenant id
        IDPBaseURL:     envStr("IDP_BASE_URL", "https://graph.microsoft.com/v1.0"),
        EmailConnStr:   os.Getenv("EMAIL_CONNECTION_STRING"), // optional, email degrades silently
        EmailSender:    envStr("EMAIL_SENDER_ADDRESS", "noreply@projectworkflow.com"),
        StorageDir:     envStr("STORAGE_DIR", "data/uploads"),
        PublicBaseURL:  os.Getenv("PUBLIC_BASE_URL"),
    }
    if len(missing) > 0 {
        log.Fatalf("missing required env vars: %s", strings.Join(missing, ", "))
    }
    if cfg.PublicBaseURL == "" {
        cfg.PublicBaseURL = "http://localhost:" + cfg.Port
    }
    return cfg
}
