// Package registry provides the central "glue" for the calculation plugins.
//
// The Registry maps the plugin entry points stored on codes (e.g.,
// "mpet.mpetrun") to the compiled Go implementations that prepare a
// calculation's input folder. It is populated once at startup from the
// compiled-in modules and then checked against the registered codes, so a
// code whose plugin is missing is reported before anything is submitted.
package registry
