package params

import "path/filepath"

// Filenames used by the study's fork interface.
const (
	ParametersFile   = "params.out"
	ResultsFile      = "results.out"
	TabularDataFile  = "List_param_study.dat"
	AnalysisDriver   = "/bin/bash " + DriverFilename
	WorkDirectoryTag = "workdir"
)

// Sweep is a single-variable list parameter study.
type Sweep struct {
	Descriptor string
	Points     []float64
}

// DefaultSweep samples the anode rate constant at two points.
func DefaultSweep() Sweep {
	return Sweep{Descriptor: "k0", Points: []float64{30, 50}}
}

// CopyFiles lists the files each study evaluation copies out of the
// simulation's working directory, driver script first.
func CopyFiles(workDir string) []string {
	return []string{
		filepath.Join(workDir, DriverFilename),
		filepath.Join(workDir, InputFilename),
		filepath.Join(workDir, CathodeInputFilename),
		filepath.Join(workDir, AnodeInputFilename),
	}
}

// ParameterStudy returns the dakota configuration for a study whose fork
// interface reuses the prepared inputs in workDir.
func ParameterStudy(workDir string) Mapping {
	m := Mapping{
		"environment": Mapping{
			"keywords":          []string{"tabular_data"},
			"tabular_data_file": TabularDataFile,
		},
		"method": Mapping{
			"id_method": "method1",
			"keywords":  []string{"list_parameter_study"},
		},
		"model": Mapping{
			"keywords":          []string{"single"},
			"id_model":          "model1",
			"interface_pointer": "interface1",
			"variables_pointer": "variables1",
			"responses_pointer": "responses1",
		},
		"variables": Mapping{
			"keywords":          []string{},
			"id_variables":      "variables1",
			"continuous_design": 1,
		},
		"interface": Mapping{
			"keywords": []string{
				"fork", "file_tag", "file_save", "directory_save", "dprepro",
				"work_directory", "directory_tag", "deactivate", "active_set_vector",
			},
			"id_interface":    "interface1",
			"analysis_driver": AnalysisDriver,
			"parameters_file": ParametersFile,
			"results_file":    ResultsFile,
			"copy_files":      CopyFiles(workDir),
			"named":           WorkDirectoryTag,
		},
		"responses": Mapping{
			"keywords":           []string{"no_gradients", "no_hessians"},
			"id_responses":       "responses1",
			"response_functions": 1,
		},
	}
	ApplySweep(m, DefaultSweep())
	return m
}

// ApplySweep points the study's method and variables sections at s.
func ApplySweep(study Mapping, s Sweep) {
	if method := study.Section("method"); method != nil {
		method["list_of_points"] = append([]float64(nil), s.Points...)
	}
	if variables := study.Section("variables"); variables != nil {
		variables["descriptors"] = s.Descriptor
	}
}
