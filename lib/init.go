package lib

import (
	//source
	_ "weir/lib/component/source/kafka"
	_ "weir/lib/component/source/replay"
	_ "weir/lib/component/source/spooldir"

	//operator
	_ "weir/lib/component/operator/filter"

	//sink
	_ "weir/lib/component/sink/echo"
)
