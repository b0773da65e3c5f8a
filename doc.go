/*
Package webdriver provides a WebDriver wire-protocol client.

The client talks to any WebDriver-compatible remote end, whether it speaks
the W3C protocol (geckodriver, modern chromedriver, Selenium 3+) or the
legacy JSON Wire Protocol (Selenium 2, older drivers). The dialect is
negotiated once per session from the shape of the new-session response and
every later command is routed, encoded and decoded for that dialect, so
calling code never branches on the protocol variant.

Example usage:

	package main

	import (
		"fmt"

		"github.com/remotewd/webdriver"
	)

	// Errors are ignored for brevity.

	func main() {
		caps := webdriver.Capabilities{"browserName": "firefox"}
		wd, _ := webdriver.NewRemote(caps, "")
		defer wd.Quit()

		wd.Get("https://play.golang.org/?simple=1")

		elem, _ := wd.FindElement(webdriver.ByCSSSelector, "#code")
		elem.Clear()
		elem.SendKeys("package main")

		btn, _ := wd.FindElement(webdriver.ByCSSSelector, "#run")
		btn.Click()

		div, _ := wd.FindElement(webdriver.ByCSSSelector, "#output")
		output, _ := div.Text()
		fmt.Println(output)
	}
*/
package webdriver
