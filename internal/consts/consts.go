package consts

const (
	CHARGE    = 1.6021918e-19 // Elementary charge (C)
	BOLTZMANN = 1.3806226e-23 // Boltzmann constant (J/K)
	KELVIN    = 273.15        // Kelvin temperature (K)

	// Mu0 is the permeability of free space (H/m), used throughout the
	// reluctance, inductance and core-loss models.
	Mu0 = 4 * 3.14159265358979323846 * 1e-7

	// AmbientTemperature is the default ambient temperature (degrees C)
	// used when an operating point does not specify one.
	AmbientTemperature = 25.0

	// RoomTemperatureKelvin is 300.15 K, the default reference temperature
	// for resistive temperature coefficients.
	RoomTemperatureKelvin = 300.15
)
