package audio

// AudioConfig holds the mixing levels for the cues
type AudioConfig struct {
	Enabled       bool
	MasterVolume  float64
	SampleRate    int
	EffectVolumes [soundTypeCount]float64
}

// DefaultAudioConfig returns standard levels
func DefaultAudioConfig() *AudioConfig {
	return &AudioConfig{
		Enabled:      true,
		MasterVolume: 0.6,
		SampleRate:   44100,
		EffectVolumes: [soundTypeCount]float64{
			SoundClick:   0.25,
			SoundStinger: 0.8,
			SoundDrone:   0.4,
		},
	}
}
