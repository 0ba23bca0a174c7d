package main

import (
	"fmt"

	"github.com/fanchat/messaging-service/cmd"
)

func main() {
	if err := cmd.Run(); err != nil {
		fmt.Println(err.Error())
		return
	}
}
