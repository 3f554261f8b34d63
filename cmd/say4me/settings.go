package main

type Settings struct {
	Port        int    `env:"PORT,default=8000"`
	BasePath    string `env:"BASE_PATH,default=/api"`
	LogEncoding string `env:"LOG_ENCODING,default=console"`

	MongoDBURI string `env:"MONGODB_URI,required=true"`

	OllamaAPIURL             string `env:"OLLAMA_API_URL,required=true"`
	LLMModel                 string `env:"LLM_MODEL,required=true"`
	ModerationTimeoutSeconds int    `env:"MODERATION_TIMEOUT_SECONDS,default=30"`

	BodyMaxLength       int     `env:"BODY_MAX_LENGTH,default=400"`
	SubmitRatePerSecond float64 `env:"SUBMIT_RATE_PER_SECOND,default=5"`
	SubmitBurst         int     `env:"SUBMIT_BURST,default=10"`
}
