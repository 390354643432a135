// nucleo-sim runs the NUCLEO-F767ZI programs against a simulated register
// bus on the host.
package main

import (
	"flag"
	"os"

	"github.com/golang/glog"
)

func main() {
	rootCmd.PersistentFlags().AddGoFlagSet(flag.CommandLine)
	err := rootCmd.Execute()
	glog.Flush()
	if err != nil {
		os.Exit(1)
	}
}
