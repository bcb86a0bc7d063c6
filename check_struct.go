package main

import (
	"fmt"
	"reflect"

	"github.com/aws/aws-sdk-go-v2/service/s3"
)

func main() {
	t := reflect.TypeOf(s3.PutObjectInput{})
	fmt.Println("Fields in PutObjectInput:")
	for i := 0; i < t.NumField(); i++ {
		fmt.Printf("- %s\n", t.Field(i).Name)
	}
}
