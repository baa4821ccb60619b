package params

// KineticPlaceholder is substituted by the study's template preprocessor with
// the sampled anode rate constant.
const KineticPlaceholder = "{k0}"

// Placeholder returns the template marker the study fills in for the sweep
// variable named descriptor.
func Placeholder(descriptor string) string {
	return "{" + descriptor + "}"
}

// Cathode returns the LiFePO4 cathode configuration (ACR particles).
func Cathode() Mapping {
	return Mapping{
		"Particles": Mapping{
			"type":           "ACR",
			"discretization": 1e-9,
			"shape":          "C3",
			"thickness":      20e-9,
		},
		"Material": Mapping{
			"muRfunc":      "LiFePO4",
			"logPad":       "false",
			"noise":        "false",
			"noise_prefac": 1e-6,
			"numnoise":     200,
			"Omega_a":      1.8560e-20,
			"kappa":        5.0148e-10,
			"B":            0.1916e9,
			"rho_s":        1.3793e28,
			"D":            5.3e-19,
			"Dfunc":        "lattice",
			"dgammadc":     0e-30,
			"cwet":         0.98,
		},
		"Reactions": Mapping{
			"rxnType": "BV",
			"k0":      1.6e-1,
			"E_A":     13000,
			"alpha":   0.5,
			"lambda":  3.4113e-20, // 8.3 kBT, Fraggedakis et al. 2020
			"Rfilm":   0e-0,
		},
	}
}

// Anode returns the graphite anode configuration (CHR particles). Its rate
// constant is left as KineticPlaceholder for the parameter study.
func Anode() Mapping {
	return Mapping{
		"Particles": Mapping{
			"type":           "CHR",
			"discretization": 2.5e-8,
			"shape":          "cylinder",
			"thickness":      20e-9,
		},
		"Material": Mapping{
			"muRfunc":      "LiC6_1param",
			"logPad":       "false",
			"noise":        "false",
			"noise_prefac": 1e-6,
			"numnoise":     200,
			"Omega_a":      1.3992e-20,
			"Omega_b":      5.761532e-21,
			"kappa":        4.0e-7,
			"B":            0.0,
			"rho_s":        1.7e28,
			"D":            1.25e-12,
			"Dfunc":        "lattice",
			"dgammadc":     0e-30,
			"cwet":         0.98,
		},
		"Reactions": Mapping{
			"rxnType": "BV",
			"k0":      KineticPlaceholder,
			"E_A":     50000,
			"alpha":   0.5,
			"lambda":  2.055e-20, // 8.3 kBT, Fraggedakis et al. 2020
			"Rfilm":   0e-0,
		},
	}
}
