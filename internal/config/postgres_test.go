package config

import "testing"

func TestLoadPostgresConfig(t *testing.T) {
	complete := map[string]string{
		"POSTGRES_USER":     "postgres",
		"POSTGRES_PASSWORD": "secret",
		"POSTGRES_DB":       "storefront_runs",
		"POSTGRES_HOSTNAME": "db",
	}
	without := func(key string) map[string]string {
		m := map[string]string{}
		for k, v := range complete {
			if k != key {
				m[k] = v
			}
		}
		return m
	}

	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{name: "complete", env: complete},
		{name: "missing user", env: without("POSTGRES_USER"), wantErr: "POSTGRES_USER is required"},
		{name: "missing password", env: without("POSTGRES_PASSWORD"), wantErr: "POSTGRES_PASSWORD is required"},
		{name: "missing database", env: without("POSTGRES_DB"), wantErr: "POSTGRES_DB is required"},
		{name: "missing host", env: without("POSTGRES_HOSTNAME"), wantErr: "POSTGRES_HOSTNAME is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config, err := LoadPostgresConfig(envFrom(tt.env))

			if tt.wantErr != "" {
				if err == nil || err.Error() != tt.wantErr {
					t.Fatalf("LoadPostgresConfig() error = %v, want %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			want := "host=db port=5432 user=postgres password=secret dbname=storefront_runs sslmode=disable"
			if got := config.ConnectionString(); got != want {
				t.Errorf("ConnectionString() = %q, want %q", got, want)
			}
		})
	}
}

func TestPostgresConfig_InSchema(t *testing.T) {
	env := map[string]string{
		"POSTGRES_USER":     "postgres",
		"POSTGRES_PASSWORD": "secret",
		"POSTGRES_DB":       "storefront_runs",
		"POSTGRES_HOSTNAME": "db",
		"POSTGRES_SCHEMA":   "history",
	}
	config, err := LoadPostgresConfig(envFrom(env))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// WHEN a copy is bound to another schema
	scoped := config.InSchema("test_schema_1")

	// THEN only the copy changes
	base := "host=db port=5432 user=postgres password=secret dbname=storefront_runs sslmode=disable"
	if got, want := config.ConnectionString(), base+" search_path=history"; got != want {
		t.Errorf("ConnectionString() = %q, want %q", got, want)
	}
	if got, want := scoped.ConnectionString(), base+" search_path=test_schema_1"; got != want {
		t.Errorf("scoped ConnectionString() = %q, want %q", got, want)
	}
}
