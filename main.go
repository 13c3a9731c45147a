package main

import "github.com/igorschultz/cloud-posture-template-scanner-pipeline/cmd/templatescan"

func main() { templatescan.Execute() }
