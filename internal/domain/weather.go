package domain

// WeatherCategory is the closed set of conditions the duration model understands.
type WeatherCategory string

const (
	WeatherClear  WeatherCategory = "Clear"
	WeatherClouds WeatherCategory = "Clouds"
	WeatherRain   WeatherCategory = "Rain"
)

// Provider condition -> category.
var weatherTable = map[string]WeatherCategory{
	"Clear":        WeatherClear,
	"Clouds":       WeatherClouds,
	"Mist":         WeatherClouds,
	"Fog":          WeatherClouds,
	"Rain":         WeatherRain,
	"Drizzle":      WeatherRain,
	"Thunderstorm": WeatherRain,
	"Snow":         WeatherRain,
}

// NormalizeWeather maps a provider condition string into a WeatherCategory.
// Unmapped conditions default to Clear.
func NormalizeWeather(condition string) WeatherCategory {
	if c, ok := weatherTable[condition]; ok {
		return c
	}
	return WeatherClear
}
