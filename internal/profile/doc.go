// Package profile loads HCL profiles: the computers and codes a run needs,
// per-job execution settings, parameter overrides and the sweep definition.
//
// A profile looks like:
//
//	computer "workstation" {
//	  hostname  = "localhost"
//	  transport = "core.local"
//	  scheduler = "core.direct"
//	  work_dir  = "/scratch/mpet"
//	}
//
//	code "dakota" {
//	  computer = "workstation"
//	  exec     = "/usr/bin/dakota"
//	  plugin   = "dakota.dakota"
//	}
//
//	job "mpet" {
//	  dry_run = true
//	  mpi     = true
//	}
//
//	override "simulation" {
//	  section "Sim Params" {
//	    Nvol_c = 12
//	  }
//	}
//
//	study {
//	  descriptor = "k0"
//	  points     = [30, 40, 50]
//	}
package profile
