package relay

import "time"

var timeNow = time.Now
