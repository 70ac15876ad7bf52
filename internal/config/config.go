package config

type Config struct {
	Environment  Environment
	HTTP         HTTPServer
	BaseURL      string `env:"BASE_URL" envDefault:"http://localhost:8080"`
	FrontendURL  string `env:"FRONTEND_URL" envDefault:"http://localhost:3000"`
	DatabasePath string `env:"DATABASE_PATH" envDefault:"crystalenergy.sqlite"`

	Stripe Stripe `envPrefix:"STRIPE_"`
	Paypal Paypal `envPrefix:"PAYPAL_"`
	OpenAI OpenAI `envPrefix:"OPENAI_"`
	Email  Email  `envPrefix:"EMAIL_"`
}

type Stripe struct {
	SecretKey     string `env:"SECRET_KEY"`
	WebhookSecret string `env:"WEBHOOK_SECRET"`
}

type Paypal struct {
	BaseApiURL   string `env:"BASE_API_URL" envDefault:"https://api-m.sandbox.paypal.com"`
	ClientID     string `env:"CLIENT_ID"`
	ClientSecret string `env:"CLIENT_SECRET"`
	WebhookID    string `env:"WEBHOOK_ID"`
}

type OpenAI struct {
	APIKey  string `env:"API_KEY"`
	BaseURL string `env:"BASE_URL" envDefault:"https://api.openai.com/v1/chat/completions"`
	Model   string `env:"MODEL" envDefault:"gpt-4"`
}

type Email struct {
	Host     string `env:"HOST" envDefault:"smtp.gmail.com"`
	Port     int    `env:"PORT" envDefault:"587"`
	User     string `env:"USER"`
	Password string `env:"PASS"`
	From     string `env:"FROM"`
	AdminTo  string `env:"ADMIN"`
}

type Environment struct {
	Name string `env:"ENVIRONMENT" envDefault:"development"`
}

type HTTPServer struct {
	Host string `env:"HTTP_HOST" envDefault:"0.0.0.0"`
	Port string `env:"HTTP_PORT" envDefault:"8080"`
}
