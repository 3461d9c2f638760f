package domain

import "github.com/supabase-community/supabase-go"

// SupabaseClient wraps the hosted Postgres and storage client.
type SupabaseClient interface {
	Initialize() error
	DB() *supabase.Client
}
