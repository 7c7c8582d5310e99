package cli

func regCommands() {
	//Pending
	pendingCmd.AddCommand(pending_rebroadcastCmd)

	//Root
	rootCmd.AddCommand(daemonCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(openCmd)
	rootCmd.AddCommand(bidCmd)
	rootCmd.AddCommand(settleCmd)
	rootCmd.AddCommand(pendingCmd)
	rootCmd.AddCommand(balanceCmd)
}
