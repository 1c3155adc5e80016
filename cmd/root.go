package cmd

import (
	"errors"
	"io/fs"
	"log"
	"time"

	"github.com/Dolphinator7/airtable-automation/internal/applicant"
	"github.com/Dolphinator7/airtable-automation/internal/eligibility"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	app = "airtable-automation"
)

type Config struct {
	Airtable    *AirtableConfig       `mapstructure:"airtable"`
	LLM         *LLMConfig            `mapstructure:"llm"`
	Shortlist   *eligibility.Criteria `mapstructure:"shortlist"`
	MetricsFile string                `mapstructure:"metrics-file"`
}

type AirtableConfig struct {
	APIKey            string           `mapstructure:"api-key"`
	APIKeyFile        string           `mapstructure:"api-key-file"`
	BaseID            string           `mapstructure:"base-id"`
	APIURL            string           `mapstructure:"api-url"`
	RequestsPerSecond float64          `mapstructure:"requests-per-second"`
	Timeout           time.Duration    `mapstructure:"timeout"`
	MaxAttempts       int              `mapstructure:"max-attempts"`
	Tables            applicant.Tables `mapstructure:"tables"`
}

type LLMConfig struct {
	Provider     string        `mapstructure:"provider"`
	APIKey       string        `mapstructure:"api-key"`
	APIKeyFile   string        `mapstructure:"api-key-file"`
	Model        string        `mapstructure:"model"`
	BaseURL      string        `mapstructure:"base-url"`
	Temperature  float64       `mapstructure:"temperature"`
	MaxTokens    int           `mapstructure:"max-tokens"`
	Timeout      time.Duration `mapstructure:"timeout"`
	MaxAttempts  int           `mapstructure:"max-attempts"`
	BackoffUnit  time.Duration `mapstructure:"backoff-unit"`
	MaxLogLength int           `mapstructure:"max-log-length"`
}

var (
	// Used for flags.
	cfgFile string
	envFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "airtable-automation compresses, decompresses, shortlists and enriches applicants in an Airtable base",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	bindings := map[string][]string{
		"airtable.api-key": {"AIRTABLE_API_KEY"},
		"airtable.base-id": {"BASE_ID", "AIRTABLE_BASE_ID"},
		"llm.api-key":      {"LLM_API_KEY", "GROQ_API_KEY", "GEMINI_API_KEY"},
		"llm.provider":     {"LLM_PROVIDER"},
		"metrics-file":     {"METRICS_FILE"},
	}
	for key, envs := range bindings {
		if err := viper.BindEnv(append([]string{key}, envs...)...); err != nil {
			log.Fatalf("binding %v environment variables: %v", envs, err)
		}
	}

	setDefaults()

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is airtable-automation.yaml in current directory)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")
	rootCmd.PersistentFlags().String("metrics-file", "", "write prometheus metrics to this file when the run ends")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	viper.BindPFlag("metrics-file", rootCmd.PersistentFlags().Lookup("metrics-file"))
}

func setDefaults() {
	tables := applicant.DefaultTables()
	viper.SetDefault("airtable.tables.applicants", tables.Applicants)
	viper.SetDefault("airtable.tables.personal-details", tables.PersonalDetails)
	viper.SetDefault("airtable.tables.work-experience", tables.WorkExperience)
	viper.SetDefault("airtable.tables.salary-preferences", tables.SalaryPreferences)
	viper.SetDefault("airtable.tables.shortlisted-leads", tables.ShortlistedLeads)
	viper.SetDefault("airtable.requests-per-second", 5)
	viper.SetDefault("airtable.timeout", "30s")
	viper.SetDefault("airtable.max-attempts", 1)

	viper.SetDefault("llm.provider", "groq")
	viper.SetDefault("llm.temperature", 0.3)
	viper.SetDefault("llm.max-tokens", 300)
	viper.SetDefault("llm.timeout", "60s")
	viper.SetDefault("llm.max-attempts", 3)
	viper.SetDefault("llm.backoff-unit", "1s")
	viper.SetDefault("llm.max-log-length", 200)

	criteria := eligibility.DefaultCriteria()
	viper.SetDefault("shortlist.min-years", criteria.MinYears)
	viper.SetDefault("shortlist.max-preferred-rate", criteria.MaxPreferredRate)
	viper.SetDefault("shortlist.min-availability", criteria.MinAvailability)
	viper.SetDefault("shortlist.tier1-companies", criteria.Tier1Companies)
	viper.SetDefault("shortlist.locations", criteria.Locations)
}

func initConfig() {
	// Values already present in the environment win over the dotenv file.
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			log.Fatalf("loading %s: %v", envFile, err)
		}
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
	}

	// The config file is optional, the environment is enough for a run.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	return config, nil
}
