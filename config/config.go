package config

import "github.com/spf13/viper"

type Config struct {
	DBHost     string `mapstructure:"DB_HOST"`
	DBPort     string `mapstructure:"DB_PORT"`
	DBUser     string `mapstructure:"DB_USER"`
	DBPassword string `mapstructure:"DB_PASSWORD"`
	DBName     string `mapstructure:"DB_NAME"`
	RedisAddr  string `mapstructure:"REDIS_ADDR"`
	HTTPPort   string `mapstructure:"HTTP_PORT"`

	// Дефолты зала: имя оператора и стартовый баланс paseli.
	ArcadeName    string `mapstructure:"ARCADE_NAME"`
	PaseliDefault int    `mapstructure:"PASELI_DEFAULT"`

	AdminPasswordHash string `mapstructure:"ADMIN_PASSWORD_HASH"`
	JWTSecret         string `mapstructure:"JWT_SECRET"`
}

func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("app")
	viper.SetConfigType("env")
	viper.AutomaticEnv()

	viper.BindEnv("DB_HOST")
	viper.BindEnv("DB_PORT")
	viper.BindEnv("DB_USER")
	viper.BindEnv("DB_PASSWORD")
	viper.BindEnv("DB_NAME")
	viper.BindEnv("REDIS_ADDR")
	viper.BindEnv("HTTP_PORT")
	viper.BindEnv("ARCADE_NAME")
	viper.BindEnv("PASELI_DEFAULT")
	viper.BindEnv("ADMIN_PASSWORD_HASH")
	viper.BindEnv("JWT_SECRET")

	viper.SetDefault("ARCADE_NAME", "ARCADE")
	viper.SetDefault("PASELI_DEFAULT", 5730)

	err = viper.ReadInConfig()
	if err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return
		}
	}
	err = viper.Unmarshal(&config)
	return
}
