// Package inputfile renders configuration mappings into the input formats of
// the external tools: INI-style configuration files for mpet, block syntax
// for dakota, and the bash submit script that launches a code.
package inputfile
