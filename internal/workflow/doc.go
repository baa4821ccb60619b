// Package workflow chains the mpet simulation and the dakota parameter study.
//
// The simulation is submitted first and its working directory becomes part of
// the study configuration: the study copies the driver script and the three
// template inputs out of that directory for every evaluation. The study is
// therefore built only from a completed simulation node.
package workflow
