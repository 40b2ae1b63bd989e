package domain

import "testing"

func TestNormalizeWeather(t *testing.T) {
	cases := map[string]WeatherCategory{
		"Clear":        WeatherClear,
		"Clouds":       WeatherClouds,
		"Mist":         WeatherClouds,
		"Fog":          WeatherClouds,
		"Rain":         WeatherRain,
		"Drizzle":      WeatherRain,
		"Thunderstorm": WeatherRain,
		"Snow":         WeatherRain,
		"Haze":         WeatherClear,
		"":             WeatherClear,
	}

	for in, want := range cases {
		if got := NormalizeWeather(in); got != want {
			t.Errorf("NormalizeWeather(%q) = %q, want %q", in, got, want)
		}
	}
}
