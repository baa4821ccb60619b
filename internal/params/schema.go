package params

import (
	"errors"
	"fmt"
)

// schema lists, per section, the keys an external tool reads.
type schema map[string][]string

var simulationSchema = schema{
	"Sim Params": {
		"profileType", "Crate", "Vmax", "Vmin", "Vset", "power", "segments", "prevDir",
		"tend", "tsteps", "relTol", "absTol", "T", "randomSeed", "seed", "dataReporter",
		"Rser", "Nvol_c", "Nvol_s", "Nvol_a", "Npart_c", "Npart_a",
	},
	"Electrodes": {"cathode", "anode", "k0_foil", "Rfilm_foil"},
	"Particles": {
		"mean_c", "stddev_c", "mean_a", "stddev_a",
		"specified_psd_c", "specified_psd_a", "cs0_c", "cs0_a",
	},
	"Conductivity": {
		"simBulkCond_c", "simBulkCond_a", "sigma_s_c", "sigma_s_a", "simPartCond_c",
		"simPartCond_a", "G_mean_c", "G_stddev_c", "G_mean_a", "G_stddev_a",
	},
	"Geometry": {
		"L_c", "L_a", "L_s", "P_L_c", "P_L_a", "poros_c", "poros_a", "poros_s",
		"BruggExp_c", "BruggExp_a", "BruggExp_s",
	},
	"Electrolyte": {
		"c0", "zp", "zm", "nup", "num", "elyteModelType", "SMset", "n", "sp", "Dp", "Dm",
	},
}

var electrodeSchema = schema{
	"Particles": {"type", "discretization", "shape", "thickness"},
	"Material": {
		"muRfunc", "logPad", "noise", "noise_prefac", "numnoise", "Omega_a", "kappa",
		"B", "rho_s", "D", "Dfunc", "dgammadc", "cwet",
	},
	"Reactions": {"rxnType", "k0", "E_A", "alpha", "lambda", "Rfilm"},
}

var studySchema = schema{
	"environment": {"keywords", "tabular_data_file"},
	"method":      {"id_method", "keywords", "list_of_points"},
	"model": {
		"keywords", "id_model", "interface_pointer", "variables_pointer", "responses_pointer",
	},
	"variables": {"keywords", "id_variables", "continuous_design", "descriptors"},
	"interface": {
		"keywords", "id_interface", "analysis_driver", "parameters_file", "results_file",
		"copy_files", "named",
	},
	"responses": {"keywords", "id_responses", "response_functions"},
}

// SimulationSections are the top-level sections of the main mpet configuration.
var SimulationSections = []string{"Sim Params", "Electrodes", "Particles", "Conductivity", "Geometry", "Electrolyte"}

// ElectrodeSections are the top-level sections of an electrode configuration.
var ElectrodeSections = []string{"Particles", "Material", "Reactions"}

// StudySections are the top-level blocks of a dakota configuration.
var StudySections = []string{"environment", "method", "model", "variables", "interface", "responses"}

// ValidateSimulation reports every section or key the simulation needs that m lacks.
func ValidateSimulation(m Mapping) error {
	return simulationSchema.check(m, SimulationSections)
}

// ValidateElectrode reports every section or key an electrode file needs that m lacks.
func ValidateElectrode(m Mapping) error {
	return electrodeSchema.check(m, ElectrodeSections)
}

// ValidateStudy reports every block or key the parameter study needs that m lacks.
func ValidateStudy(m Mapping) error {
	return studySchema.check(m, StudySections)
}

func (s schema) check(m Mapping, sections []string) error {
	var errs []error
	for _, name := range sections {
		section := m.Section(name)
		if section == nil {
			errs = append(errs, fmt.Errorf("missing section %q", name))
			continue
		}
		for _, key := range s[name] {
			if _, ok := section[key]; !ok {
				errs = append(errs, fmt.Errorf("section %q: missing key %q", name, key))
			}
		}
	}
	return errors.Join(errs...)
}
