package params

// Input filenames the simulation reads. The Electrodes section points at the
// two electrode files by name, so they have to agree with the job options.
const (
	InputFilename        = "template.in"
	CathodeInputFilename = "template_c.in"
	AnodeInputFilename   = "template_a.in"
	DriverFilename       = "driver.sh"
)

// Simulation returns the main mpet configuration: run settings, the electrode
// file references, particle, conductivity and geometry settings and the
// electrolyte model.
func Simulation() Mapping {
	return Mapping{
		"Sim Params": Mapping{
			"profileType":  "CC",
			"Crate":        1,
			"Vmax":         3.6,
			"Vmin":         2.0,
			"Vset":         0.12,
			"power":        1,
			"segments":     "[(0.3,0.4),(-0.5,0.1)]",
			"prevDir":      "false",
			"tend":         1.2e3,
			"tsteps":       200,
			"relTol":       1e-6,
			"absTol":       1e-6,
			"T":            298,
			"randomSeed":   "false",
			"seed":         0,
			"dataReporter": "hdf5",
			"Rser":         0.0,
			"Nvol_c":       10,
			"Nvol_s":       5,
			"Nvol_a":       10,
			"Npart_c":      2,
			"Npart_a":      2,
		},
		"Electrodes": Mapping{
			"cathode":    CathodeInputFilename,
			"anode":      AnodeInputFilename,
			"k0_foil":    1e0,
			"Rfilm_foil": 0e-0,
		},
		"Particles": Mapping{
			"mean_c":          100e-9,
			"stddev_c":        1e-9,
			"mean_a":          100e-9,
			"stddev_a":        1e-9,
			"specified_psd_c": "false",
			"specified_psd_a": "false",
			"cs0_c":           0.01,
			"cs0_a":           0.99,
		},
		"Conductivity": Mapping{
			"simBulkCond_c": "false",
			"simBulkCond_a": "false",
			"sigma_s_c":     1e-1,
			"sigma_s_a":     1e-1,
			"simPartCond_c": "false",
			"simPartCond_a": "false",
			"G_mean_c":      1e-14,
			"G_stddev_c":    0,
			"G_mean_a":      1e-14,
			"G_stddev_a":    0,
		},
		"Geometry": Mapping{
			"L_c":        50e-6,
			"L_a":        50e-6,
			"L_s":        25e-6,
			"P_L_c":      0.69,
			"P_L_a":      0.69,
			"poros_c":    0.4,
			"poros_a":    0.4,
			"poros_s":    1.0,
			"BruggExp_c": -0.5,
			"BruggExp_a": -0.5,
			"BruggExp_s": -0.5,
		},
		"Electrolyte": Mapping{
			"c0":             1000,
			"zp":             1,
			"zm":             -1,
			"nup":            1,
			"num":            1,
			"elyteModelType": "SM",
			"SMset":          "valoen_bernardi",
			"n":              1,
			"sp":             -1,
			"Dp":             2.2e-10,
			"Dm":             2.94e-10,
		},
	}
}
