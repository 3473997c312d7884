package main

import (
	"flag"
	"os"
	"reflect"
	"strings"

	"github.com/golang/glog"

	"github.com/robotalks/kl200/pkg/l1/comm/mqtt"
	"github.com/robotalks/kl200/pkg/l1/msgs"

	_ "github.com/robotalks/kl200/pkg/kl200/msgs"
)

var (
	mqttURL = "mqtt://localhost:1883/robo/"
	filter  = "#"
)

func init() {
	if val := os.Getenv("ROBO_MQTT_URL"); val != "" {
		mqttURL = val
	}
	flag.StringVar(&mqttURL, "mqtt", mqttURL, "MQTT broker URL.")
	flag.StringVar(&filter, "topic", filter, "Topic filter under the prefix.")
}

func main() {
	flag.Parse()
	flag.Set("logtostderr", "true")

	opts, prefix, err := mqtt.ClientOptionsFromURL(mqttURL)
	if err != nil {
		glog.Fatal(err)
	}
	q := mqtt.NewQueue(mqtt.UniqueClientID(opts, "kl200mon:"), prefix)
	if token := q.Connect(); token.Wait() && token.Error() != nil {
		glog.Fatal(token.Error())
	}
	defer q.Close()

	q.Sub(filter, mqtt.Handler(func(topic string, payload []byte) {
		if strings.HasSuffix(topic, "/meta") {
			glog.Infof("%s: %s", topic, string(payload))
			return
		}
		typed, err := msgs.DecodeTyped(payload)
		if err != nil {
			glog.Warningf("%s: bad message: %v", topic, err)
			return
		}
		msg, err := typed.Decode()
		if err != nil {
			glog.Warningf("%s: decode error: (type_id=%x) %v", topic, typed.TypeID, err)
			return
		}
		glog.Infof("%s: #%d [%s] %s", topic, typed.Sequence,
			reflect.Indirect(reflect.ValueOf(msg)).Type().Name(),
			msg.(msgs.SerializableMessage).Serializable().String())
	}))
	<-(chan struct{})(nil)
}
