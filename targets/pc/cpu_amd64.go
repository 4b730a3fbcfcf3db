package pc

// Implemented in cpu_amd64.s. Everything except readFlags needs ring 0.

func outb(port uint16, value uint8)
func readFlags() uintptr
func writeFlags(flags uintptr)
func cli()
func sti()
func hlt()
