// Package params assembles the nested configuration mappings handed to the
// mpet simulation and the dakota parameter study.
//
// The values are static literals. Validity is owned by the external tools;
// this package only guarantees that every section and key those tools read
// is present, see ValidateSimulation, ValidateElectrode and ValidateStudy.
package params
