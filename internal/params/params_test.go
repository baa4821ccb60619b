package params

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimulation_HasEverySection(t *testing.T) {
	sim := Simulation()

	for _, name := range SimulationSections {
		assert.NotNil(t, sim.Section(name), "missing section %q", name)
	}
	require.NoError(t, ValidateSimulation(sim))
}

func TestSimulation_ReferencesElectrodeFiles(t *testing.T) {
	electrodes := Simulation().Section("Electrodes")
	require.NotNil(t, electrodes)

	assert.Equal(t, CathodeInputFilename, electrodes["cathode"])
	assert.Equal(t, AnodeInputFilename, electrodes["anode"])
}

func TestElectrodes_HaveEverySection(t *testing.T) {
	for name, m := range map[string]Mapping{"cathode": Cathode(), "anode": Anode()} {
		t.Run(name, func(t *testing.T) {
			for _, section := range ElectrodeSections {
				assert.NotNil(t, m.Section(section), "missing section %q", section)
			}
			require.NoError(t, ValidateElectrode(m))
		})
	}
}

func TestAnode_RateConstantIsTemplated(t *testing.T) {
	assert.Equal(t, KineticPlaceholder, Anode().Section("Reactions")["k0"])
	assert.Equal(t, 1.6e-1, Cathode().Section("Reactions")["k0"])
}

func TestValidateSimulation_ReportsMissingKeys(t *testing.T) {
	sim := Simulation()
	delete(sim, "Geometry")
	delete(sim.Section("Sim Params"), "Vmax")

	err := ValidateSimulation(sim)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `missing section "Geometry"`)
	assert.Contains(t, err.Error(), `section "Sim Params": missing key "Vmax"`)
}

func TestValidateElectrode_ReportsMissingSection(t *testing.T) {
	anode := Anode()
	delete(anode, "Reactions")

	err := ValidateElectrode(anode)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `missing section "Reactions"`)
}

func TestParameterStudy_CopyFilesOrder(t *testing.T) {
	study := ParameterStudy("/tmp/job1")
	require.NoError(t, ValidateStudy(study))

	iface := study.Section("interface")
	require.NotNil(t, iface)

	want := []string{
		"/tmp/job1/driver.sh",
		"/tmp/job1/template.in",
		"/tmp/job1/template_c.in",
		"/tmp/job1/template_a.in",
	}
	if diff := cmp.Diff(want, iface["copy_files"]); diff != "" {
		t.Errorf("copy_files mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "/bin/bash driver.sh", iface["analysis_driver"])
	assert.Equal(t, ParametersFile, iface["parameters_file"])
	assert.Equal(t, ResultsFile, iface["results_file"])
}

func TestParameterStudy_SweepsOneVariable(t *testing.T) {
	study := ParameterStudy("/w")

	assert.Equal(t, []float64{30, 50}, study.Section("method")["list_of_points"])
	assert.Equal(t, "k0", study.Section("variables")["descriptors"])
	assert.Equal(t, 1, study.Section("variables")["continuous_design"])
	assert.Equal(t, []string{"no_gradients", "no_hessians"}, study.Section("responses")["keywords"])
	assert.Equal(t, TabularDataFile, study.Section("environment")["tabular_data_file"])
}

func TestApplySweep_ReplacesPoints(t *testing.T) {
	study := ParameterStudy("/w")
	ApplySweep(study, Sweep{Descriptor: "k0", Points: []float64{10, 20, 40}})

	assert.Equal(t, []float64{10, 20, 40}, study.Section("method")["list_of_points"])
}

func TestMapping_MergeIsDeep(t *testing.T) {
	anode := Anode()
	anode.Merge(Mapping{
		"Reactions": map[string]any{"k0": 30.0},
		"Extra":     "yes",
	})

	reactions := anode.Section("Reactions")
	assert.Equal(t, 30.0, reactions["k0"])
	assert.Equal(t, "BV", reactions["rxnType"], "sibling keys survive the merge")
	assert.Equal(t, "yes", anode["Extra"])
}

func TestMapping_CloneIsIndependent(t *testing.T) {
	orig := ParameterStudy("/w")
	clone := orig.Clone()

	clone.Section("interface")["copy_files"].([]string)[0] = "changed"
	clone.Section("method")["id_method"] = "changed"

	assert.Equal(t, "/w/driver.sh", orig.Section("interface")["copy_files"].([]string)[0])
	assert.Equal(t, "method1", orig.Section("method")["id_method"])
}

func TestMapping_KeysSorted(t *testing.T) {
	m := Mapping{"b": 1, "a": 2, "c": 3}
	assert.Equal(t, []string{"a", "b", "c"}, m.Keys())
}

func TestPlaceholder_MatchesAnodeTemplate(t *testing.T) {
	assert.Equal(t, KineticPlaceholder, Placeholder("k0"))
	assert.True(t, Anode().HasString(Placeholder("k0")))
	assert.False(t, Anode().HasString(Placeholder("E_A")))
	assert.False(t, Cathode().HasString(KineticPlaceholder))
}

func TestMapping_HasStringLooksInsideLists(t *testing.T) {
	m := Mapping{
		"a": Mapping{"b": []any{1, "{x}"}},
		"c": map[string]any{"d": []string{"{y}"}},
	}

	assert.True(t, m.HasString("{x}"))
	assert.True(t, m.HasString("{y}"))
	assert.False(t, m.HasString("{z}"))
}
