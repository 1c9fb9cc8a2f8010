package checkout

// Config configures Stripe checkout.
type Config struct {
	SecretKey  string `env:"STRIPE_SECRET_KEY"`
	SuccessURL string `env:"STRIPE_SUCCESS_URL" envDefault:"http://localhost:3000/dashboard?checkout=success"`
	CancelURL  string `env:"STRIPE_CANCEL_URL" envDefault:"http://localhost:3000/pricing?checkout=canceled"`
	// APIURL points the client at another API host, such as stripe-mock.
	APIURL string `env:"STRIPE_API_URL"`
}

// Enabled reports whether a secret key is configured.
func (c Config) Enabled() bool { return c.SecretKey != "" }
