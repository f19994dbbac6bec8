package internal

import (
	"encoding/json"
	"log"
	"os"
	"time"

	"github.com/haatos/freestyle-multibranch/internal/util"
)

var Config *Configuration

type SecondsDuration time.Duration

func NewSecondsDuration(seconds int64) SecondsDuration {
	return SecondsDuration(time.Duration(seconds) * time.Second)
}

func (sd SecondsDuration) MarshalJSON() ([]byte, error) {
	seconds := float64(time.Duration(sd)) / float64(time.Second)
	return json.Marshal(seconds)
}

func (sd *SecondsDuration) UnmarshalJSON(data []byte) error {
	var seconds float64
	if err := json.Unmarshal(data, &seconds); err != nil {
		return err
	}
	*sd = SecondsDuration(seconds * float64(time.Second))
	return nil
}

type Configuration struct {
	// Hour of day (0-23) at which orphaned branch workspaces are removed
	CleanupHour uint `json:"cleanup_hour"`
	// Marker file suggested for new marker criteria
	DefaultMarkerFile string `json:"default_marker_file"`
	// Upper bound for waiting on a busy workspace, zero waits for as long
	// as the build request lives
	LeaseWait SecondsDuration `json:"lease_wait_seconds"`
	// Requests per second allowed per client by the API rate limiter
	RateLimit float64 `json:"rate_limit"`
}

func DefaultConfiguration() *Configuration {
	return &Configuration{
		CleanupHour:       3,
		DefaultMarkerFile: DefaultMarkerFile,
		LeaseWait:         NewSecondsDuration(0),
		RateLimit:         20,
	}
}

func InitializeConfiguration(path string) {
	Config = DefaultConfiguration()

	configFileExists, _ := util.PathExists(path)
	if !configFileExists {
		if err := writeConfiguration(path, Config); err != nil {
			log.Fatal(err)
		}
		return
	}

	configBytes, err := os.ReadFile(path)
	if err != nil {
		log.Fatal(err)
	}
	if err := json.Unmarshal(configBytes, &Config); err != nil {
		log.Fatal(err)
	}
	if Config.CleanupHour > 23 {
		log.Printf("cleanup_hour %d out of range, using 3\n", Config.CleanupHour)
		Config.CleanupHour = 3
	}
}

func UpdateConfiguration(path string, config *Configuration) error {
	if err := writeConfiguration(path, config); err != nil {
		return err
	}
	Config = config
	return nil
}

func writeConfiguration(path string, config *Configuration) error {
	b, err := json.MarshalIndent(config, "", "    ")
	if err != nil {
		return err
	}

	configFile, err := os.Create(path)
	if err != nil {
		return err
	}
	defer configFile.Close()

	_, err = configFile.Write(b)
	return err
}
