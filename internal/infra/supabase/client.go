package supabase

import (
	"fmt"

	"question-bank/internal/domain"

	"github.com/supabase-community/supabase-go"
)

// Client implements domain.SupabaseClient.
type Client struct {
	client *supabase.Client
	config domain.Config
	logger domain.Logger
}

// NewClient creates an uninitialized Supabase client.
func NewClient(config domain.Config, logger domain.Logger) domain.SupabaseClient {
	return &Client{
		config: config,
		logger: logger,
	}
}

// DB returns the underlying client, nil before Initialize.
func (s *Client) DB() *supabase.Client {
	return s.client
}

// Initialize establishes a connection to Supabase
func (s *Client) Initialize() error {
	supabaseURL := s.config.GetSupabaseURL()
	supabaseKey := s.config.GetSupabaseKey()

	if supabaseURL == "" || supabaseKey == "" {
		return fmt.Errorf("supabase URL and key must be provided")
	}

	client, err := supabase.NewClient(supabaseURL, supabaseKey, &supabase.ClientOptions{})
	if err != nil {
		return fmt.Errorf("failed to create Supabase client: %w", err)
	}

	s.client = client
	s.logger.Info("Supabase client initialized", "url", supabaseURL)
	return nil
}
